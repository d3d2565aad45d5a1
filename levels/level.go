package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/platformer/common"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml *.tmx
var LevelsFS embed.FS

const DefaultLevel = "default.yaml"

var ErrInvalidLevel = errors.New("levels: invalid level")

// Level is the static geometry of one play area. Rectangles are in pixels
// with y growing downward.
type Level struct {
	Name      string        `yaml:"name"`
	Width     float64       `yaml:"width"`
	Height    float64       `yaml:"height"`
	Spawn     common.Point  `yaml:"spawn"`
	Platforms []common.Rect `yaml:"platforms"`
	Walls     []common.Rect `yaml:"walls"`
}

// Bounds covers every platform and wall. Width and Height, when set, extend
// it from the origin.
func (l *Level) Bounds() common.Rect {
	minX, minY := 0.0, 0.0
	maxX, maxY := l.Width, l.Height
	for _, group := range [][]common.Rect{l.Platforms, l.Walls} {
		for _, r := range group {
			minX = math.Min(minX, r.X)
			minY = math.Min(minY, r.Y)
			maxX = math.Max(maxX, r.X+r.W)
			maxY = math.Max(maxY, r.Y+r.H)
		}
	}
	return common.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (l *Level) Validate() error {
	if len(l.Platforms) == 0 {
		return fmt.Errorf("%w: %s has no platforms", ErrInvalidLevel, l.Name)
	}
	for i, r := range l.Platforms {
		if r.Empty() {
			return fmt.Errorf("%w: %s platform %d has no area", ErrInvalidLevel, l.Name, i)
		}
	}
	for i, r := range l.Walls {
		if r.Empty() {
			return fmt.Errorf("%w: %s wall %d has no area", ErrInvalidLevel, l.Name, i)
		}
	}
	if l.Width < 0 || l.Height < 0 {
		return fmt.Errorf("%w: %s has negative size", ErrInvalidLevel, l.Name)
	}
	for i, r := range l.Platforms {
		if r.Contains(l.Spawn) {
			return fmt.Errorf("%w: %s spawn is inside platform %d", ErrInvalidLevel, l.Name, i)
		}
	}
	return nil
}

func (l *Level) applyDefaults() {
	b := l.Bounds()
	if l.Width == 0 {
		l.Width = b.X + b.W
	}
	if l.Height == 0 {
		l.Height = b.Y + b.H
	}
}

// Load reads a level by path or by embedded name. Files on disk win so
// levels can be edited without a rebuild.
func Load(name string) (*Level, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return LoadFS(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}
	clean := strings.TrimPrefix(filepath.ToSlash(name), "levels/")
	if path.Ext(clean) == "" {
		clean += ".yaml"
	}
	return LoadFS(LevelsFS, clean)
}

// LoadFS reads a .yaml or .tmx level from fsys.
func LoadFS(fsys fs.FS, name string) (*Level, error) {
	var (
		lvl *Level
		err error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		lvl, err = loadYAML(fsys, name)
	case ".tmx":
		lvl, err = loadTMX(fsys, name)
	default:
		return nil, fmt.Errorf("levels: unsupported level format %q", name)
	}
	if err != nil {
		return nil, err
	}

	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	lvl.applyDefaults()
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return lvl, nil
}

func loadYAML(fsys fs.FS, name string) (*Level, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	return &lvl, nil
}

// Names lists the embedded levels.
func Names() []string {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.tmx"} {
		matches, err := fs.Glob(LevelsFS, pattern)
		if err != nil {
			continue
		}
		names = append(names, matches...)
	}
	sort.Strings(names)
	return names
}
