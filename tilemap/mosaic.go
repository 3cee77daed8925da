package tilemap

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sync"

	_ "image/jpeg" // tile servers deliver JPEG as well as PNG
	_ "image/png"

	"github.com/schollz/progressbar/v3"
)

// PlaceholderColor fills tile slots whose fetch failed or was skipped in
// dry-run mode, preserving the mosaic geometry.
var PlaceholderColor = color.RGBA{0xee, 0xee, 0xee, 0xff}

// Mosaic is the assembled composite raster. The canvas and its transform
// are handed to overlay renderers as a shared pair; overlays may paint on
// the canvas but must not alter the transform.
type Mosaic struct {
	Canvas    *image.RGBA
	Transform *Transform
	Report    FetchReport
}

// ComposeOptions tune the mosaic assembly.
type ComposeOptions struct {
	// Workers bounds the number of concurrent tile fetches. Defaults to 4,
	// which respects the rate policies of public tile servers.
	Workers int

	// Progress renders a progress bar on stderr while tiles are fetched.
	Progress bool
}

type tileResult struct {
	placement Placement
	img       image.Image
	err       error
}

// Compose fetches every planned tile and pastes it into a fresh canvas at
// its destination offset. Tiles all share one zoom level, so pasting needs
// no blending or resampling. Individual fetch failures leave a placeholder
// tile and are listed in the report; only context cancellation aborts.
//
// Given identical cache contents, the output is byte-identical across runs.
func Compose(ctx context.Context, plan *MosaicPlan, resolver TileResolver, opts ComposeOptions) (*Mosaic, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	canvas := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(PlaceholderColor), image.Point{}, draw.Src)

	jobs := make(chan Placement, len(plan.Placements))
	results := make(chan *tileResult, len(plan.Placements))

	workerWG := &sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			for placement := range jobs {
				results <- fetchOne(ctx, resolver, placement)
			}
		}()
	}

	for _, placement := range plan.Placements {
		jobs <- placement
	}
	close(jobs)

	go func() {
		workerWG.Wait()
		close(results)
	}()

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(plan.Placements)), "fetching tiles")
	}

	mosaic := &Mosaic{
		Canvas:    canvas,
		Transform: plan.Transform(),
		Report:    FetchReport{Planned: len(plan.Placements)},
	}

	// Join point: every placement reports back before the canvas is final.
	for result := range results {
		if bar != nil {
			bar.Add(1)
		}

		if result.err != nil {
			if errors.Is(result.err, ErrDryRun) {
				continue
			}
			slog.Warn("tile left as placeholder", "error", result.err)
			mosaic.Report.addFailure(result.placement.Tile)
			continue
		}

		dst := image.Rect(result.placement.DX, result.placement.DY,
			result.placement.DX+plan.TileSize, result.placement.DY+plan.TileSize)
		draw.Draw(canvas, dst, result.img, result.img.Bounds().Min, draw.Src)
		mosaic.Report.Fetched++
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mosaic.Report.sortFailures()
	return mosaic, nil
}

func fetchOne(ctx context.Context, resolver TileResolver, placement Placement) *tileResult {
	data, err := resolver.Resolve(ctx, placement.Tile)
	if err != nil {
		return &tileResult{placement: placement, err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return &tileResult{
			placement: placement,
			err:       &FetchError{Tile: placement.Tile, Cause: err},
		}
	}

	return &tileResult{placement: placement, img: img}
}
