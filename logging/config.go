package logging

// Config tunes the router queue and filtering.
type Config struct {
	BufferSize      int
	MinimumSeverity Severity
	Fields          map[string]any
}

// DefaultConfig returns the settings used when the caller does not tune the
// router.
func DefaultConfig() Config {
	return Config{
		BufferSize:      512,
		MinimumSeverity: SeverityInfo,
	}
}

// CloneFields copies the ambient fields attached to every event.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
