package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/reflect"
	"github.com/strideapp/stride/internal/render"
	"github.com/strideapp/stride/internal/timeutil"
)

var reflectCmd = &cobra.Command{
	Use:   "reflect [frame]",
	Short: "Summarize activities over a time range",
	Long: `Summarize activities over a named time frame (today, yesterday,
this-week, last-week, this-month, last-month) or an explicit --from/--to
range. Defaults to today.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReflect,
}

var (
	reflectFrom          string
	reflectTo            string
	reflectCategory      string
	reflectCaseSensitive bool
	reflectExport        string
)

func init() {
	reflectCmd.Flags().StringVar(&reflectFrom, "from", "", "Range start")
	reflectCmd.Flags().StringVar(&reflectTo, "to", "", "Range end (exclusive)")
	reflectCmd.Flags().StringVarP(&reflectCategory, "category", "c", "", "Category filter, wildcards supported")
	reflectCmd.Flags().BoolVar(&reflectCaseSensitive, "case-sensitive", false, "Match the category filter case-sensitively")
	reflectCmd.Flags().StringVar(&reflectExport, "export", "", "Write the summary as JSON to a file")
}

func runReflect(cmd *cobra.Command, args []string) error {
	loc, err := zone(cmd).Location()
	if err != nil {
		return err
	}
	now := time.Now()

	start, end, err := reflectRange(cmd, args, loc, now)
	if err != nil {
		return err
	}

	summary, err := refl.Generate(start, end, now, reflect.Filter{
		Category:      reflectCategory,
		CaseSensitive: reflectCaseSensitive,
	})
	if err != nil {
		return err
	}

	if reflectExport != "" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(reflectExport, data, 0644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Println("Summary written to", reflectExport)
		return nil
	}

	fmt.Print(render.Summary(summary))
	return nil
}

func reflectRange(cmd *cobra.Command, args []string, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	if reflectFrom != "" || reflectTo != "" {
		from := now
		to := now
		var err error
		if reflectFrom != "" {
			if from, err = timeutil.ResolveInstant(reflectFrom, loc, now); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if reflectTo != "" {
			if to, err = timeutil.ResolveInstant(reflectTo, loc, now); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		return timeutil.ResolveRange(from, to)
	}

	frame := timeutil.FrameToday
	if len(args) == 1 {
		var err error
		if frame, err = timeutil.ParseFrame(args[0]); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	weekStart, err := timeutil.ParseWeekday(cfg.General.WeekStartsOn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return timeutil.ResolveFrame(frame, loc, now, weekStart)
}
