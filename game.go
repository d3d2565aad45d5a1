package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/platformer/levels"
	"github.com/milk9111/platformer/obj"
	"github.com/milk9111/platformer/prefabs"
	"github.com/milk9111/platformer/render"
)

const (
	screenWidth  = 640
	screenHeight = 480
)

type Game struct {
	logger *log.Logger

	levelName  string
	configPath string

	world   *obj.World
	watcher *prefabs.Watcher
	debug   render.Options
}

func NewGame(levelName, configPath string, debug bool, logger *log.Logger) (*Game, error) {
	g := &Game{
		logger:     logger,
		levelName:  levelName,
		configPath: configPath,
	}
	g.setDebug(debug)

	world, err := g.buildWorld()
	if err != nil {
		return nil, err
	}
	g.world = world
	return g, nil
}

func (g *Game) buildWorld() (*obj.World, error) {
	spec, err := prefabs.LoadWorldSpecFile(g.configPath)
	if err != nil {
		return nil, err
	}
	level, err := levels.Load(g.levelName)
	if err != nil {
		return nil, err
	}
	return obj.NewWorld(*spec, level, g.logger), nil
}

// Watch starts reporting edits to tuning files and levels on disk. Missing
// directories are skipped.
func (g *Game) Watch() error {
	var dirs []string
	for _, dir := range []string{"prefabs", "levels", filepath.Dir(g.configPath), filepath.Dir(g.levelName)} {
		if dir == "" || dir == "." {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if !contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return err
	}
	g.watcher = w
	g.logger.Info("watching for changes", "dirs", strings.Join(dirs, ","))
	return nil
}

func (g *Game) setDebug(on bool) {
	g.debug = render.Options{Outlines: on, Space: on, Markers: on, Telemetry: on}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.setDebug(!g.debug.Telemetry)
	}

	g.reload()
	g.world.Update(pollInput())
	return nil
}

func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for _, name := range g.watcher.Drain() {
		switch classifyChange(name, g.configPath, g.levelName) {
		case changeTuning:
			g.reloadTuning(name)
		case changeLevel:
			g.rebuild(name)
		}
	}
}

func (g *Game) reloadTuning(name string) {
	spec, err := prefabs.LoadWorldSpecFile(g.configPath)
	if err != nil {
		g.logger.Error("reload tuning", "file", name, "err", err)
		return
	}
	if needsRebuild(g.world.Spec(), *spec) {
		g.rebuild(name)
		return
	}
	g.world.ApplyTuning(*spec)
}

func (g *Game) rebuild(name string) {
	world, err := g.buildWorld()
	if err != nil {
		g.logger.Error("rebuild world", "file", name, "err", err)
		return
	}
	g.world.Unload()
	g.world = world
}

func (g *Game) Draw(screen *ebiten.Image) {
	render.DrawWorld(screen, g.world, g.debug)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// Close unloads the world and stops the watcher.
func (g *Game) Close() error {
	g.world.Unload()
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

// needsRebuild reports whether next differs from current in anything
// ApplyTuning cannot swap into a running world.
func needsRebuild(current, next prefabs.WorldSpec) bool {
	next.Player.MoveImpulse = current.Player.MoveImpulse
	next.Player.JumpImpulse = current.Player.JumpImpulse
	next.Player.LinearDamping = current.Player.LinearDamping
	next.Player.GroundedMode = current.Player.GroundedMode
	return next != current
}

type change uint8

const (
	changeNone change = iota
	changeTuning
	changeLevel
)

// classifyChange decides what an edited file affects. The tuning file is
// the explicit config path or prefabs/world.yaml; the level is the file the
// game was started with, by path or by embedded name.
func classifyChange(name, configPath, levelName string) change {
	if prefabs.IsScriptFile(name) {
		return changeNone
	}
	if configPath != "" {
		if samePath(name, configPath) {
			return changeTuning
		}
	} else if filepath.Base(name) == prefabs.WorldSpecFile && filepath.Base(filepath.Dir(name)) == "prefabs" {
		return changeTuning
	}

	if samePath(name, levelName) {
		return changeLevel
	}
	if filepath.Base(filepath.Dir(name)) == "levels" && levelFileName(levelName) == filepath.Base(name) {
		return changeLevel
	}
	return changeNone
}

func levelFileName(levelName string) string {
	base := filepath.Base(levelName)
	if filepath.Ext(base) == "" {
		base += ".yaml"
	}
	return base
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, err := filepath.Abs(a)
	if err != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
