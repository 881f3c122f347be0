package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/strideapp/stride/internal/config"
	"github.com/strideapp/stride/internal/reflect"
	"github.com/strideapp/stride/internal/store"
	"github.com/strideapp/stride/internal/store/memstore"
	"github.com/strideapp/stride/internal/store/sqlite"
	"github.com/strideapp/stride/internal/timeutil"
	"github.com/strideapp/stride/internal/tracker"
)

var rootCmd = &cobra.Command{
	Use:           "stride",
	Short:         "Stride - a mindful activity tracker",
	Long:          `Stride tracks what you are doing over time: begin, hold, resume and end named activities, then reflect on where your time went.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var (
	cfgPath  string
	tzName   string
	tzOffset int

	cfg  *config.Config
	db   store.Store
	trk  *tracker.Tracker
	refl *reflect.Engine
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "", "Time zone for interpreting times, e.g. Europe/Amsterdam")
	rootCmd.PersistentFlags().IntVar(&tzOffset, "tz-offset", 0, "Fixed UTC offset in minutes for interpreting times")
	rootCmd.MarkFlagsMutuallyExclusive("tz", "tz-offset")

	rootCmd.AddCommand(beginCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(holdCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(nowCmd)
	rootCmd.AddCommand(reflectCmd)
}

func setup() error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err = openStore(cfg)
	if err != nil {
		return err
	}

	trk = tracker.New(db, timeutil.SystemClock{})
	refl = reflect.New(trk, cfg.General.CategorySeparator)
	return nil
}

// openStore selects the storage backend from configuration. The engines
// never learn which backend is active.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return sqlite.New(cfg.Storage.Path)
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// zone builds the time zone selection: CLI flags win over the config
// file, which wins over the local system zone.
func zone(cmd *cobra.Command) timeutil.Zone {
	if cmd.Flags().Changed("tz-offset") {
		offset := tzOffset
		return timeutil.Zone{OffsetMinutes: &offset}
	}
	if tzName != "" {
		return timeutil.Zone{Name: tzName}
	}
	if cfg.General.TimeZoneOffset != nil {
		return timeutil.Zone{OffsetMinutes: cfg.General.TimeZoneOffset}
	}
	return timeutil.Zone{Name: cfg.General.TimeZone}
}

// resolveAt parses an --at expression in the selected zone; empty means
// now.
func resolveAt(cmd *cobra.Command, expr string) (time.Time, error) {
	loc, err := zone(cmd).Location()
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.ResolveInstant(expr, loc, time.Now())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
