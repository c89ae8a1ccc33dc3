package shape

import (
	"fmt"
	"image"
	"math/rand"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
)

// Rasterizer renders text onto a fixed-size monochrome canvas and samples
// lit pixels as particle candidates. Safe for concurrent use: faces are
// created per call, the parsed fonts are shared read-only.
type Rasterizer struct {
	cfg     config.TextRasterConfig
	regular *opentype.Font
	bold    *opentype.Font
}

// NewRasterizer parses the fonts used for text clouds. With an empty
// FontFile the Go fonts are used; otherwise the file serves both weights.
func NewRasterizer(cfg config.TextRasterConfig) (*Rasterizer, error) {
	r := &Rasterizer{cfg: cfg}

	if cfg.FontFile != "" {
		data, err := os.ReadFile(cfg.FontFile)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font file %s: %w", cfg.FontFile, err)
		}
		r.regular, r.bold = f, f
		return r, nil
	}

	var err error
	if r.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, fmt.Errorf("parsing Go Regular: %w", err)
	}
	if r.bold, err = opentype.Parse(gobold.TTF); err != nil {
		return nil, fmt.Errorf("parsing Go Bold: %w", err)
	}
	return r, nil
}

// Face returns a new font face for the given text shape.
func (r *Rasterizer) Face(t config.TextConfig) (font.Face, error) {
	f := r.regular
	if t.Bold {
		f = r.bold
	}
	// At 72 DPI one point is one pixel, so the size is in canvas pixels.
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    t.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// measure returns the advance width of s in pixels.
func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// WrapLines breaks text greedily: a word is appended to the current line
// unless that would make the line wider than maxWidth, in which case the
// non-empty line is committed and the word starts the next one. A single
// word wider than maxWidth still gets its own line.
func WrapLines(face font.Face, text string, maxWidth float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && measure(face, candidate) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Layout is a rendered text canvas and the lines drawn on it.
type Layout struct {
	Canvas *image.Gray
	Lines  []string
	Widths []float64 // measured width of each line, pixels
}

// Render draws the text centered on a black canvas. Without Wrap the whole
// string is one line through the canvas center; with Wrap the paragraph
// starts ParagraphOffset above center and advances FontSize+LineSpacing per line.
func (r *Rasterizer) Render(t config.TextConfig) (Layout, error) {
	canvas := image.NewGray(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	layout := Layout{Canvas: canvas}

	face, err := r.Face(t)
	if err != nil {
		return layout, fmt.Errorf("creating face: %w", err)
	}
	defer face.Close()

	cx := float64(r.cfg.Width) / 2
	cy := float64(r.cfg.Height) / 2

	var lines []string
	y := cy
	lineHeight := t.FontSize + r.cfg.LineSpacing
	if t.Wrap {
		lines = WrapLines(face, t.Text, t.MaxWidth)
		y = cy - r.cfg.ParagraphOffset
	} else if s := strings.TrimSpace(t.Text); s != "" {
		lines = []string{s}
	}

	// Vertical middle: shift the baseline by half the ascent/descent difference
	m := face.Metrics()
	middle := float64(m.Ascent-m.Descent) / 64 / 2

	d := &font.Drawer{Dst: canvas, Src: image.White, Face: face}
	for _, line := range lines {
		w := measure(face, line)
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6((cx - w/2) * 64),
			Y: fixed.Int26_6((y + middle) * 64),
		}
		d.DrawString(line)
		layout.Lines = append(layout.Lines, line)
		layout.Widths = append(layout.Widths, w)
		y += lineHeight
	}
	return layout, nil
}

// Candidates samples the canvas on the stride grid and converts every lit
// cell to world coordinates: x right, y up, z jittered in [-ZJitter, ZJitter).
func (r *Rasterizer) Candidates(canvas *image.Gray, rng *rand.Rand) []r3.Vec {
	b := canvas.Bounds()
	halfW := float64(b.Dx()) / 2
	halfH := float64(b.Dy()) / 2
	stride := r.cfg.Stride

	var pts []r3.Vec
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			if canvas.GrayAt(x, y).Y <= r.cfg.Threshold {
				continue
			}
			pts = append(pts, r3.Vec{
				X: (float64(x) - halfW) * r.cfg.WorldScale,
				Y: (halfH - float64(y)) * r.cfg.WorldScale,
				Z: (rng.Float64() - 0.5) * 2 * r.cfg.ZJitter,
			})
		}
	}
	return pts
}

// GenerateTextCloud rasterizes t and fills n slots cyclically from the lit
// candidates. It returns the buffer and the candidate count M; M == 0 yields
// an all-origin buffer, which is accepted.
func (r *Rasterizer) GenerateTextCloud(t config.TextConfig, n int, rng *rand.Rand) (Buffer, int, error) {
	if n <= 0 {
		return Buffer{}, 0, nil
	}
	layout, err := r.Render(t)
	if err != nil {
		return make(Buffer, n), 0, err
	}
	pts := r.Candidates(layout.Canvas, rng)
	return fill(pts, n), len(pts), nil
}
