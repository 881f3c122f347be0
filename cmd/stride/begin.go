package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/render"
	"github.com/strideapp/stride/internal/tracker"
)

var beginCmd = &cobra.Command{
	Use:   "begin [description]",
	Short: "Begin tracking a new activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runBegin,
}

var (
	beginCategory string
	beginTags     []string
	beginAt       string
)

func init() {
	beginCmd.Flags().StringVarP(&beginCategory, "category", "c", "", "Category, sub-categories separated by the configured separator (required)")
	beginCmd.Flags().StringSliceVarP(&beginTags, "tags", "t", nil, "Tags for the activity")
	beginCmd.Flags().StringVar(&beginAt, "at", "", "Start time (defaults to now), e.g. 13:45 or 2024-03-22T13:45")
	beginCmd.MarkFlagRequired("category")
}

func runBegin(cmd *cobra.Command, args []string) error {
	at, err := resolveAt(cmd, beginAt)
	if err != nil {
		return err
	}

	activity, err := trk.Begin(tracker.BeginOptions{
		Category:    beginCategory,
		Description: args[0],
		Tags:        beginTags,
		At:          at,
	})
	if err != nil {
		return err
	}

	fmt.Println("Began", render.Activity(activity))
	return nil
}
