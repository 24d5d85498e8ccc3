package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog/log"
)

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

// Path returns the location of the tile below baseDir.
func (c TileCoordinate) Path(baseDir string) string {
	return filepath.Join(
		baseDir,
		fmt.Sprintf("%d", c.Z),
		fmt.Sprintf("%d", c.X),
		fmt.Sprintf("%d", c.Y)+".webp",
	)
}

// TileOptions controls overlay tile rendering.
type TileOptions struct {
	Tiles       config.Tiles
	Overlay     overlay.Options
	Concurrency int
	Force       bool
	FastCheck   bool
}

// TileStats counts the outcome of a rendering run.
type TileStats struct {
	Rendered int
	Skipped  int
	Failed   int
}

type result struct {
	Coord TileCoordinate
	Err   error
	Skip  bool
}

// TilesInBound lists the tiles of zoom z intersecting bound.
func TilesInBound(bound orb.Bound, z int) []TileCoordinate {
	zoom := maptile.Zoom(z)
	nw := maptile.At(orb.Point{bound.Min.Lon(), bound.Max.Lat()}, zoom)
	se := maptile.At(orb.Point{bound.Max.Lon(), bound.Min.Lat()}, zoom)

	last := uint32(1)<<zoom - 1
	maxX, maxY := min(se.X, last), min(se.Y, last)
	if maxX < nw.X || maxY < nw.Y {
		return nil
	}

	tiles := make([]TileCoordinate, 0, int(maxX-nw.X+1)*int(maxY-nw.Y+1))
	for x := nw.X; x <= maxX; x++ {
		for y := nw.Y; y <= maxY; y++ {
			tiles = append(tiles, TileCoordinate{Z: z, X: int(x), Y: int(y)})
		}
	}
	return tiles
}

// RenderTile composes and rasterises the overlay of one tile.
func RenderTile(c TileCoordinate, size int, opts overlay.Options, measurements []overlay.Measurement) (overlay.Scene, error) {
	view := projection.TileViewport(c.Z, c.X, c.Y, float64(size))

	// the view centre is meaningless on a tile
	opts.ShowCoordinates = false
	return overlay.Compose(view, opts, measurements...)
}

// ProcessTiles renders the overlay tiles of every configured zoom level
// into WebP files. Existing tiles are kept unless opts.Force is set.
func ProcessTiles(ctx context.Context, opts TileOptions, measurements []overlay.Measurement) (TileStats, error) {
	var stats TileStats
	tc := opts.Tiles

	if opts.FastCheck {
		if _, err := os.Stat(tc.BaseDir); err == nil {
			log.Info().
				Str("dir", tc.BaseDir).
				Msg("Tiles directory exists, skipping (fast-check)")

			return stats, nil
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	size := tc.TileSize
	if size <= 0 {
		size = int(projection.DefaultTileSize)
	}

	bound := tc.TileBound()
	for z := tc.MinZoom; z <= tc.MaxZoom; z++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		tiles := TilesInBound(bound, z)
		log.Debug().Int("zoom", z).Int("count", len(tiles)).Msg("Processing zoom level")

		for res := range processBatch(ctx, concurrency, tiles, func(c TileCoordinate) (bool, error) {
			return renderAndSave(c, tc.BaseDir, size, tc.Quality, opts, measurements)
		}) {
			switch {
			case res.Err != nil:
				stats.Failed++
				log.Error().
					Err(res.Err).
					Int("z", res.Coord.Z).
					Int("x", res.Coord.X).
					Int("y", res.Coord.Y).
					Msg("Failed to render tile")
			case res.Skip:
				stats.Skipped++
			default:
				stats.Rendered++
			}
		}
	}

	log.Info().
		Int("rendered", stats.Rendered).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("Tiles processed")

	return stats, ctx.Err()
}

// processBatch runs fn over tiles with a fixed number of workers and
// returns a channel closed once every tile has been handled.
func processBatch(ctx context.Context, concurrency int, tiles []TileCoordinate, fn func(TileCoordinate) (bool, error)) <-chan result {
	jobs := make(chan TileCoordinate, len(tiles))
	results := make(chan result, len(tiles))

	go func() {
		defer close(jobs)
		for _, t := range tiles {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if ctx.Err() != nil {
					continue
				}
				skip, err := fn(c)
				results <- result{Coord: c, Skip: skip, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// renderAndSave reports true when an existing tile was kept.
func renderAndSave(c TileCoordinate, baseDir string, size int, quality float32, opts TileOptions, measurements []overlay.Measurement) (bool, error) {
	outPath := c.Path(baseDir)

	// Check existence if not forcing overwrite
	if !opts.Force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return true, nil
		}
	}

	scene, err := RenderTile(c, size, opts.Overlay, measurements)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return false, err
	}

	img := overlay.RenderImage(scene, overlay.DefaultPalette, 1)
	if err := writeFileAtomic(outPath, func(w io.Writer) error {
		return overlay.WriteWebP(w, img, quality)
	}); err != nil {
		return false, err
	}

	log.Trace().Str("path", outPath).Msg("Tile rendered")
	return false, nil
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it into place, so path never holds a partially written tile.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tile-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = f.Chmod(0644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(f.Name(), path)
}
