package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/render"
	"github.com/strideapp/stride/internal/tracker"
)

var holdCmd = &cobra.Command{
	Use:   "hold",
	Short: "Pause the current activity",
	Args:  cobra.NoArgs,
	RunE:  runHold,
}

var (
	holdReason      string
	holdAt          string
	holdNewIfExists bool
)

func init() {
	holdCmd.Flags().StringVarP(&holdReason, "reason", "r", "", "Reason for the pause (defaults to the activity description)")
	holdCmd.Flags().StringVar(&holdAt, "at", "", "Pause time (defaults to now)")
	holdCmd.Flags().BoolVar(&holdNewIfExists, "new-if-exists", false, "Finish an existing pause and start a new one with this reason")
}

func runHold(cmd *cobra.Command, args []string) error {
	at, err := resolveAt(cmd, holdAt)
	if err != nil {
		return err
	}

	intermission, err := trk.Hold(tracker.HoldOptions{
		Reason:      holdReason,
		At:          at,
		NewIfExists: holdNewIfExists,
	})
	if err != nil {
		return err
	}

	fmt.Println("Held", render.Activity(intermission))
	return nil
}
