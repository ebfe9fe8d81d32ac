package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"frameloop/netcode"
	"frameloop/netcode/internal/recording"
	"frameloop/netcode/internal/stubgame"
)

// NewVerifyCommand creates the verify command, which replays a recorded run
// through the stub simulation and compares the per-frame checksums.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "verify <journal>",
		Short:         "Replay a recorded run and verify its checksums",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0])
		},
	}
	return cmd
}

func runVerify(cmd *cobra.Command, path string) error {
	journal, err := recording.Open(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	state := stubgame.State{}
	frames := 0
	err = journal.Range(func(rec recording.FrameRecord) error {
		if netcode.Frame(state.Frame) != rec.Frame {
			return fmt.Errorf("journal skips from frame %d to %d", state.Frame, rec.Frame)
		}
		inputs := make([]netcode.PlayerInput, len(rec.Inputs))
		for i, payload := range rec.Inputs {
			inputs[i] = netcode.PlayerInput{Bytes: payload, Status: netcode.InputConfirmed}
		}
		state = stubgame.Advance(state, inputs)

		sum := state.Checksum()
		if got := hex.EncodeToString(sum[:]); got != rec.Checksum {
			return fmt.Errorf("checksum mismatch at frame %d: recorded %s, replayed %s", rec.Frame, rec.Checksum, got)
		}
		frames++
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "verified %d frames, final state frame=%d value=%d\n",
		frames, state.Frame, state.Value)
	return nil
}
