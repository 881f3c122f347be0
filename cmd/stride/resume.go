package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/render"
	"github.com/strideapp/stride/internal/tracker"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [id]",
	Short: "Resume a held activity",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResume,
}

var (
	resumeAt   string
	resumeList bool
)

func init() {
	resumeCmd.Flags().StringVar(&resumeAt, "at", "", "Resume time (defaults to now)")
	resumeCmd.Flags().BoolVarP(&resumeList, "list", "l", false, "List held activities instead of resuming")
}

func runResume(cmd *cobra.Command, args []string) error {
	if resumeList {
		return printHeld()
	}

	at, err := resolveAt(cmd, resumeAt)
	if err != nil {
		return err
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	}

	activity, err := trk.Resume(tracker.ResumeOptions{ID: id, At: at})
	if errors.Is(err, tracker.ErrAmbiguousTarget) {
		fmt.Println("Multiple held activities, pick one by id:")
		if listErr := printHeld(); listErr != nil {
			return listErr
		}
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println("Resumed", render.Activity(activity))
	return nil
}

func printHeld() error {
	held, err := trk.ListHeld()
	if err != nil {
		return err
	}
	if len(held) == 0 {
		fmt.Println("No held activities.")
		return nil
	}
	for i := range held {
		fmt.Printf("%s  %s\n", held[i].ID, render.Activity(&held[i]))
	}
	return nil
}
