package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/render"
	"github.com/strideapp/stride/internal/tracker"
)

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current activity",
	Args:  cobra.NoArgs,
	RunE:  runEnd,
}

var endAt string

func init() {
	endCmd.Flags().StringVar(&endAt, "at", "", "End time (defaults to now)")
}

func runEnd(cmd *cobra.Command, args []string) error {
	at, err := resolveAt(cmd, endAt)
	if err != nil {
		return err
	}

	activity, err := trk.End(tracker.EndOptions{At: at})
	if err != nil {
		return err
	}

	fmt.Println("Ended", render.Activity(activity))
	return nil
}
