// simulate runs the platformer without a window, driving the player from a
// tengo replay script at the fixed time step.
//
// Usage:
//
//	simulate [--level name] [--config path] [--script name] [--frames n]
//	simulate list    - List embedded levels and replay scripts
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/milk9111/platformer/levels"
	"github.com/milk9111/platformer/obj"
	"github.com/milk9111/platformer/prefabs"
	"github.com/milk9111/platformer/replay"
)

var (
	flagLevel       string
	flagConfig      string
	flagScript      string
	flagFrames      int
	flagReportEvery int
	flagLogLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the platformer headless from a replay script",
	Long: `Steps a world for a fixed number of frames, feeding input from a
tengo replay script, and logs player snapshots.

Examples:
  simulate
  simulate --script walk_and_hop --frames 600 --report-every 30
  simulate --level arena.tmx --script ./my_run.tengo --log-level debug`,
	SilenceUsage: true,
	RunE:         runSimulate,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List embedded levels and replay scripts",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("levels:")
		for _, name := range levels.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("scripts:")
		for _, name := range prefabs.Scripts() {
			fmt.Printf("  %s\n", strings.TrimSuffix(name, ".tengo"))
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagLevel, "level", levels.DefaultLevel, "Level name or path (.yaml or .tmx)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a world tuning YAML file")
	rootCmd.Flags().StringVar(&flagScript, "script", "walk_and_hop", "Replay script name or path")
	rootCmd.Flags().IntVar(&flagFrames, "frames", 600, "Number of fixed steps to run")
	rootCmd.Flags().IntVar(&flagReportEvery, "report-every", 60, "Log a snapshot every n frames (0 = only the last)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "simulate"})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Error("bad --log-level", "err", err)
		return err
	}
	logger.SetLevel(level)

	if flagFrames < 0 {
		err := fmt.Errorf("simulate: --frames must not be negative, got %d", flagFrames)
		logger.Error("bad --frames", "err", err)
		return err
	}

	spec, err := prefabs.LoadWorldSpecFile(flagConfig)
	if err != nil {
		logger.Error("load tuning", "err", err)
		return err
	}
	lvl, err := levels.Load(flagLevel)
	if err != nil {
		logger.Error("load level", "err", err)
		return err
	}
	script, err := replay.Load(flagScript)
	if err != nil {
		logger.Error("load script", "err", err)
		return err
	}

	world := obj.NewWorld(*spec, lvl, logger)
	defer world.Unload()

	report := func(snap obj.Snapshot) {
		if flagReportEvery > 0 && snap.Frame%uint64(flagReportEvery) == 0 {
			logSnapshot(logger, snap)
		}
	}
	if err := replay.Run(world, script, flagFrames, report); err != nil {
		logger.Error("replay", "script", script.Name(), "err", err)
		return err
	}

	final := world.Snapshot()
	logSnapshot(logger, final)
	logger.Info("done",
		"script", script.Name(),
		"frames", final.Frame,
		"jumps", world.Jumps(),
	)
	return nil
}

func logSnapshot(logger *log.Logger, snap obj.Snapshot) {
	logger.Info("frame",
		"n", snap.Frame,
		"x", fmt.Sprintf("%.2f", snap.Position.X),
		"y", fmt.Sprintf("%.2f", snap.Position.Y),
		"vx", fmt.Sprintf("%.2f", snap.Velocity.X),
		"vy", fmt.Sprintf("%.2f", snap.Velocity.Y),
		"grounded", snap.Grounded,
	)
}
