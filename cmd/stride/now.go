package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/render"
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Show the currently active activity",
	Args:  cobra.NoArgs,
	RunE:  runNow,
}

func runNow(cmd *cobra.Command, args []string) error {
	status, err := trk.Now()
	if err != nil {
		return err
	}
	if status == nil {
		fmt.Println("No activity is currently active.")
		return nil
	}

	fmt.Printf("Tracking %s for %s\n",
		render.Activity(&status.Activity),
		render.Duration(status.LiveDuration))
	return nil
}
