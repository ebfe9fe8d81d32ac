package recording

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frameloop/netcode/internal/frames"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "recording"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestStoreRecordAndLoad(t *testing.T) {
	store := openTempStore(t)

	rec := FrameRecord{
		Frame:    3,
		Inputs:   [][]byte{{1, 0, 0, 0}, {2, 0, 0, 0}},
		Checksum: "00000000000000000000000000000006",
	}
	require.NoError(t, store.Record(rec))

	loaded, err := store.Frame(3)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestStoreMissingFrame(t *testing.T) {
	store := openTempStore(t)

	_, err := store.Frame(7)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreOverwrite(t *testing.T) {
	store := openTempStore(t)

	require.NoError(t, store.Record(FrameRecord{Frame: 0, Inputs: [][]byte{{1}}}))
	require.NoError(t, store.Record(FrameRecord{Frame: 0, Inputs: [][]byte{{9}}}))

	loaded, err := store.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{9}}, loaded.Inputs)
}

func TestStoreRangeOrder(t *testing.T) {
	store := openTempStore(t)

	for _, frame := range []frames.Frame{12, 0, 101, 5} {
		require.NoError(t, store.Record(FrameRecord{Frame: frame, Inputs: [][]byte{{byte(frame)}}}))
	}

	var seen []frames.Frame
	err := store.Range(func(rec FrameRecord) error {
		seen = append(seen, rec.Frame)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []frames.Frame{0, 5, 12, 101}, seen)
}

func TestStoreRangeStopsOnError(t *testing.T) {
	store := openTempStore(t)

	for frame := frames.Frame(0); frame < 4; frame++ {
		require.NoError(t, store.Record(FrameRecord{Frame: frame}))
	}

	sentinel := errors.New("stop")
	count := 0
	err := store.Range(func(FrameRecord) error {
		count++
		if count == 2 {
			return sentinel
		}
		return nil
	})
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, 2, count)
}
