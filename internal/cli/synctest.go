package cli

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"frameloop/netcode"
	"frameloop/netcode/internal/recording"
	"frameloop/netcode/internal/stubgame"
	"frameloop/netcode/logging"
)

// SyncTestOptions holds flags for the synctest command.
type SyncTestOptions struct {
	*RootOptions
	Frames int
	Record string
	Skew   bool
}

// NewSyncTestCommand creates the synctest command, which runs the stub
// simulation under replay verification and reports any desyncs.
func NewSyncTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncTestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "synctest",
		Short:         "Run the stub simulation under replay verification",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncTest(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Frames, "frames", 60, "number of frames to advance")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the run to a frame journal at this path")
	cmd.Flags().BoolVar(&opts.Skew, "skew", false, "make one player's inputs disagree")

	return cmd
}

func runSyncTest(cmd *cobra.Command, opts *SyncTestOptions) error {
	cfg, err := opts.Session()
	if err != nil {
		return err
	}
	checkDistance := cfg.Session.CheckDistance
	if checkDistance == 0 {
		checkDistance = 7
	}

	logCfg := logging.DefaultConfig()
	logCfg.Fields = map[string]any{"command": "synctest"}
	var sinks []logging.NamedSink
	if opts.Verbose {
		sinks = append(sinks, logging.NamedSink{Name: "console", Sink: logging.NewConsoleSink(cmd.ErrOrStderr())})
	}
	router := logging.NewRouter(nil, logCfg, sinks)
	defer router.Close(context.Background())

	session, err := netcode.NewSyncTestSession[stubgame.State](cfg.Session.NumPlayers, stubgame.InputSize, checkDistance)
	if err != nil {
		return err
	}
	for handle := 0; handle < cfg.Session.NumPlayers; handle++ {
		if err := session.AddPlayer(netcode.Local(), netcode.PlayerHandle(handle)); err != nil {
			return err
		}
		if cfg.Session.FrameDelay > 0 {
			if err := session.SetFrameDelay(cfg.Session.FrameDelay, netcode.PlayerHandle(handle)); err != nil {
				return err
			}
		}
	}
	if err := session.StartSession(); err != nil {
		return err
	}
	router.Publish(logging.Event{
		Severity: logging.SeverityInfo,
		Category: "session",
		Message:  "session started",
		Fields: map[string]any{
			"players":        cfg.Session.NumPlayers,
			"check_distance": checkDistance,
			"frame_delay":    cfg.Session.FrameDelay,
		},
	})

	var journal *recording.Store
	if opts.Record != "" {
		journal, err = recording.Open(opts.Record)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	game := stubgame.New()
	desyncs := 0
	for frame := 0; frame < opts.Frames; frame++ {
		for handle := 0; handle < cfg.Session.NumPlayers; handle++ {
			input := stubgame.EncodeInput(inputValue(opts, cfg.Session.NumPlayers, handle, frame))
			if err := session.AddLocalInput(netcode.PlayerHandle(handle), input); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
		}
		if err := session.AdvanceFrame(game); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if game.LoadErr != nil {
			return fmt.Errorf("frame %d: %w", frame, game.LoadErr)
		}

		for _, event := range session.DrainEvents() {
			if event.Kind != netcode.EventDesyncDetected {
				continue
			}
			desyncs++
			router.Publish(logging.Event{
				Severity: logging.SeverityError,
				Category: "session",
				Message:  "desync detected",
				Fields:   map[string]any{"frame": event.Frame},
			})
			fmt.Fprintf(cmd.OutOrStdout(), "desync at frame %d: recorded %x, replayed %x\n",
				event.Frame, event.Recorded, event.Replayed)
		}

		if journal != nil {
			// The journal carries the inputs the frame was simulated with,
			// which lag the submitted ones by the frame delay.
			inputs := make([][]byte, cfg.Session.NumPlayers)
			for handle := range inputs {
				value := uint32(0)
				if frame >= cfg.Session.FrameDelay {
					value = inputValue(opts, cfg.Session.NumPlayers, handle, frame-cfg.Session.FrameDelay)
				}
				inputs[handle] = stubgame.EncodeInput(value)
			}
			sum := game.State.Checksum()
			rec := recording.FrameRecord{
				Frame:    netcode.Frame(frame),
				Inputs:   inputs,
				Checksum: hex.EncodeToString(sum[:]),
			}
			if err := journal.Record(rec); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "advanced %d frames, final state frame=%d value=%d, desyncs=%d\n",
		opts.Frames, game.State.Frame, game.State.Value, desyncs)
	if desyncs > 0 {
		return fmt.Errorf("detected %d desyncs", desyncs)
	}
	return nil
}

// inputValue is the deterministic input each player submits for a frame.
func inputValue(opts *SyncTestOptions, numPlayers, handle, frame int) uint32 {
	value := uint32(frame)
	if opts.Skew && handle == numPlayers-1 {
		value++
	}
	return value
}
