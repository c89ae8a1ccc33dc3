// Shape dump tool - samples every shape buffer and writes it out for
// inspection: one CSV of positions plus PNG previews.
//
// Usage: go run ./cmd/shapedump -out dump -seed 42 -count 5000
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/shape"
)

// PointRow is one particle position in one shape buffer.
type PointRow struct {
	Shape string  `csv:"shape"`
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
	Phase float64 `csv:"phase"`
}

const (
	previewSize = 512
	viewExtent  = 25.0 // world units from center to preview edge
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outDir := flag.String("out", "shapedump", "Output directory")
	seed := flag.Int64("seed", 1, "RNG seed")
	count := flag.Int("count", 0, "Particle count override (0 = config value)")
	every := flag.Int("every", 1, "Write every Nth particle to the CSV")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath, *outDir, *seed, *count, *every); err != nil {
		fmt.Fprintf(os.Stderr, "shapedump: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outDir string, seed int64, count, every int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if count > 0 {
		cfg.Particles.Count = count
	}
	if every < 1 {
		every = 1
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	reg, err := shape.Build(context.Background(), cfg, seed)
	if err != nil {
		return err
	}
	slog.Info("registry built",
		"particles", humanize.Comma(int64(reg.Len())),
		"buffers", humanize.Bytes(reg.SizeBytes()),
	)

	if err := writePoints(filepath.Join(outDir, "points.csv"), reg, every); err != nil {
		return err
	}

	for _, id := range shape.All() {
		path := filepath.Join(outDir, id.String()+"_front.png")
		if err := writePNG(path, frontView(reg.Buffer(id), viewExtent)); err != nil {
			return err
		}
		slog.Info("preview written", "shape", id.String(), "path", path, "candidates", humanize.Comma(int64(reg.Candidates(id))))
	}

	return writeCanvases(cfg, outDir)
}

func writePoints(path string, reg *shape.Registry, every int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer closeFile(f, path, &err)

	phases := reg.Phases()
	rows := make([]PointRow, 0, shape.Count*(reg.Len()/every+1))
	for _, id := range shape.All() {
		buf := reg.Buffer(id)
		for i := 0; i < len(buf); i += every {
			p := buf[i]
			rows = append(rows, PointRow{Shape: id.String(), Index: i, X: p.X, Y: p.Y, Z: p.Z, Phase: phases[i]})
		}
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("points written", "path", path, "rows", humanize.Comma(int64(len(rows))))
	return nil
}

// frontView plots a buffer orthographically onto the xy plane, accumulating
// brightness per pixel. extent is the half-width of world space shown.
func frontView(buf shape.Buffer, extent float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, previewSize, previewSize))
	scale := previewSize / (2 * extent)
	for _, p := range buf {
		px := int((p.X + extent) * scale)
		py := int((extent - p.Y) * scale)
		if px < 0 || py < 0 || px >= previewSize || py >= previewSize {
			continue
		}
		c := img.GrayAt(px, py)
		if c.Y <= 255-48 {
			c.Y += 48
		} else {
			c.Y = 255
		}
		img.SetGray(px, py, c)
	}
	return img
}

// writeCanvases re-renders the text canvases the text clouds sample from.
func writeCanvases(cfg *config.Config, outDir string) error {
	rast, err := shape.NewRasterizer(cfg.TextRaster)
	if err != nil {
		return err
	}
	for i, tc := range cfg.Texts {
		layout, err := rast.Render(tc)
		if err != nil {
			return fmt.Errorf("rendering text %d: %w", i, err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("text%d_canvas.png", i+1))
		if err := writePNG(path, layout.Canvas); err != nil {
			return err
		}
		slog.Info("canvas written", "path", path, "lines", len(layout.Lines))
	}
	return nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer closeFile(f, path, &err)
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// closeFile closes a written file and reports the close error through errp
// unless an earlier error is already set.
func closeFile(f *os.File, path string, errp *error) {
	if err := f.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("closing %s: %w", path, err)
	}
}
