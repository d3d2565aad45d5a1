package levels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/milk9111/platformer/common"
)

func TestLoadEmbedded(t *testing.T) {
	cases := []struct {
		name      string
		file      string
		platforms int
		walls     int
		spawn     common.Point
		width     float64
		height    float64
	}{
		{"default", "default.yaml", 3, 2, common.Point{X: 320, Y: 300}, 640, 480},
		{"default_no_ext", "default", 3, 2, common.Point{X: 320, Y: 300}, 640, 480},
		{"flat", "levels/flat.yaml", 1, 2, common.Point{X: 320, Y: 300}, 640, 480},
		{"arena_tmx", "arena.tmx", 4, 2, common.Point{X: 320, Y: 200}, 640, 480},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lvl, err := Load(c.file)
			if err != nil {
				t.Fatalf("Load(%q): %v", c.file, err)
			}
			if len(lvl.Platforms) != c.platforms {
				t.Fatalf("expected %d platforms, got %d", c.platforms, len(lvl.Platforms))
			}
			if len(lvl.Walls) != c.walls {
				t.Fatalf("expected %d walls, got %d", c.walls, len(lvl.Walls))
			}
			if lvl.Spawn != c.spawn {
				t.Fatalf("expected spawn %v, got %v", c.spawn, lvl.Spawn)
			}
			if lvl.Width != c.width || lvl.Height != c.height {
				t.Fatalf("expected size %vx%v, got %vx%v", c.width, c.height, lvl.Width, lvl.Height)
			}
		})
	}
}

func TestDefaultFloor(t *testing.T) {
	lvl, err := Load(DefaultLevel)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := common.Rect{X: 0, Y: 450, W: 640, H: 30}
	if lvl.Platforms[0] != want {
		t.Fatalf("expected floor %v, got %v", want, lvl.Platforms[0])
	}
	if lvl.Name != "default" {
		t.Fatalf("expected name default, got %q", lvl.Name)
	}
}

func TestTMXObjectGroups(t *testing.T) {
	lvl, err := Load("arena.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lvl.Name != "arena" {
		t.Fatalf("expected name from file stem, got %q", lvl.Name)
	}
	floor := common.Rect{X: 0, Y: 448, W: 640, H: 32}
	if lvl.Platforms[0] != floor {
		t.Fatalf("expected floor %v, got %v", floor, lvl.Platforms[0])
	}
	left := common.Rect{X: -16, Y: 0, W: 16, H: 448}
	if lvl.Walls[0] != left {
		t.Fatalf("expected left wall %v, got %v", left, lvl.Walls[0])
	}
}

func TestLoadFSInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		"empty.yaml":     {Data: []byte("name: empty\nspawn: {x: 1, y: 1}\n")},
		"flat_wall.yaml": {Data: []byte("platforms:\n  - {x: 0, y: 10, w: 10, h: 10}\nwalls:\n  - {x: 0, y: 0, w: 0, h: 10}\n")},
		"buried.yaml":    {Data: []byte("spawn: {x: 5, y: 15}\nplatforms:\n  - {x: 0, y: 10, w: 10, h: 10}\n")},
		"broken.yaml":    {Data: []byte("platforms: [\n")},
		"level.json":     {Data: []byte("{}")},
		"nospawn.tmx": {Data: []byte(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="2" height="2" tilewidth="32" tileheight="32" infinite="0">
 <objectgroup id="1" name="Platforms">
  <object id="1" x="0" y="32" width="64" height="32"/>
 </objectgroup>
</map>
`)},
	}

	cases := []struct {
		name    string
		file    string
		invalid bool
	}{
		{"no_platforms", "empty.yaml", true},
		{"zero_area_wall", "flat_wall.yaml", true},
		{"spawn_in_platform", "buried.yaml", true},
		{"no_spawn_group", "nospawn.tmx", true},
		{"bad_yaml", "broken.yaml", false},
		{"unknown_format", "level.json", false},
		{"missing", "missing.yaml", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadFS(fsys, c.file)
			if err == nil {
				t.Fatalf("expected error for %s", c.file)
			}
			if got := errors.Is(err, ErrInvalidLevel); got != c.invalid {
				t.Fatalf("errors.Is(err, ErrInvalidLevel) = %v, want %v (err: %v)", got, c.invalid, err)
			}
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	data := []byte("spawn: {x: 50, y: 10}\nplatforms:\n  - {x: 0, y: 100, w: 200, h: 20}\n")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lvl, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lvl.Name != "custom" {
		t.Fatalf("expected name custom, got %q", lvl.Name)
	}
	if lvl.Width != 200 || lvl.Height != 120 {
		t.Fatalf("expected size from bounds 200x120, got %vx%v", lvl.Width, lvl.Height)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"arena.tmx", "default.yaml", "flat.yaml"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
