package levels

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/lafriks/go-tiled"
	"github.com/milk9111/platformer/common"
)

// Object group names read from Tiled maps. Matching ignores case.
const (
	groupPlatforms = "platforms"
	groupWalls     = "walls"
	groupSpawn     = "spawn"
)

func loadTMX(fsys fs.FS, name string) (*Level, error) {
	m, err := tiled.LoadFile(name, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("levels: load TMX %s: %w", name, err)
	}

	lvl := &Level{
		Width:  float64(m.Width * m.TileWidth),
		Height: float64(m.Height * m.TileHeight),
	}

	spawnSet := false
	for _, og := range m.ObjectGroups {
		switch strings.ToLower(og.Name) {
		case groupPlatforms:
			for _, o := range og.Objects {
				lvl.Platforms = append(lvl.Platforms, common.Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		case groupWalls:
			for _, o := range og.Objects {
				lvl.Walls = append(lvl.Walls, common.Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		case groupSpawn:
			// first object wins; rectangles spawn at their center
			if len(og.Objects) == 0 || spawnSet {
				continue
			}
			o := og.Objects[0]
			lvl.Spawn = common.Point{X: o.X + o.Width/2, Y: o.Y + o.Height/2}
			spawnSet = true
		}
	}

	if !spawnSet {
		return nil, fmt.Errorf("%w: %s has no %q object group", ErrInvalidLevel, name, groupSpawn)
	}
	return lvl, nil
}
