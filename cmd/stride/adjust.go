package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/render"
	"github.com/strideapp/stride/internal/tracker"
)

var adjustCmd = &cobra.Command{
	Use:   "adjust [id]",
	Short: "Adjust the current or a given non-ended activity",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdjust,
}

var (
	adjustCategory     string
	adjustDescription  string
	adjustBegin        string
	adjustTags         []string
	adjustOverrideTags bool
)

func init() {
	adjustCmd.Flags().StringVarP(&adjustCategory, "category", "c", "", "New category")
	adjustCmd.Flags().StringVarP(&adjustDescription, "description", "d", "", "New description")
	adjustCmd.Flags().StringVar(&adjustBegin, "begin", "", "New start time")
	adjustCmd.Flags().StringSliceVarP(&adjustTags, "tags", "t", nil, "Tags to add")
	adjustCmd.Flags().BoolVar(&adjustOverrideTags, "override-tags", false, "Replace the existing tags instead of extending them")
}

func runAdjust(cmd *cobra.Command, args []string) error {
	opts := tracker.AdjustOptions{OverrideTags: adjustOverrideTags}
	if len(args) == 1 {
		opts.ID = args[0]
	}
	if cmd.Flags().Changed("category") {
		opts.Category = &adjustCategory
	}
	if cmd.Flags().Changed("description") {
		opts.Description = &adjustDescription
	}
	if cmd.Flags().Changed("tags") {
		opts.Tags = &adjustTags
	}
	if cmd.Flags().Changed("begin") {
		at, err := resolveAt(cmd, adjustBegin)
		if err != nil {
			return err
		}
		opts.Begin = &at
	}
	if opts.Category == nil && opts.Description == nil && opts.Tags == nil && opts.Begin == nil {
		return fmt.Errorf("nothing to adjust, pass at least one of --category, --description, --begin, --tags")
	}

	activity, err := trk.Adjust(opts)
	if err != nil {
		return err
	}

	fmt.Println("Adjusted", render.Activity(activity))
	return nil
}
