// platformer is a capsule-bodied platformer movement prototype.
//
// Controls:
//
//	A/Left, D/Right  - move
//	Space            - jump (only while grounded)
//	R                - respawn
//	F1               - toggle debug overlay
//	Esc              - quit
package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/milk9111/platformer/levels"
)

var (
	flagLevel  string
	flagConfig string
	flagDebug  bool
	flagWatch  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platformer",
	Short: "Capsule platformer movement prototype",
	Long: `Runs the platformer in a 640x480 window.

Levels are looked up on disk first and then among the embedded levels
(default, flat, arena.tmx). Tuning comes from --config or
prefabs/world.yaml.

Examples:
  platformer
  platformer --level arena.tmx --debug
  platformer --config ./tuning.yaml --watch`,
	SilenceUsage: true,
	RunE:         runGame,
}

func init() {
	rootCmd.Flags().StringVar(&flagLevel, "level", levels.DefaultLevel, "Level name or path (.yaml or .tmx)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a world tuning YAML file")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Start with the debug overlay enabled")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload tuning and level files when they change on disk")
}

func runGame(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "platformer",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}

	game, err := NewGame(flagLevel, flagConfig, flagDebug, logger)
	if err != nil {
		logger.Error("start", "err", err)
		return err
	}
	defer func() {
		if err := game.Close(); err != nil {
			logger.Warn("close", "err", err)
		}
	}()

	if flagWatch {
		if err := game.Watch(); err != nil {
			logger.Warn("watch disabled", "err", err)
		}
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("platformer")
	ebiten.SetTPS(int(1/game.world.Spec().Physics.TimeStep + 0.5))

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("run", "err", err)
		return err
	}
	return nil
}
