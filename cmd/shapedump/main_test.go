package main

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/shape"
)

func TestCloseFileReportsCloseError(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	var werr error
	closeFile(f, "out.csv", &werr)
	if !errors.Is(werr, os.ErrClosed) {
		t.Errorf("expected close error to surface, got %v", werr)
	}
}

func TestCloseFileKeepsEarlierError(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	earlier := errors.New("encode failed")
	werr := earlier
	closeFile(f, "out.csv", &werr)
	if werr != earlier {
		t.Errorf("expected earlier error to win, got %v", werr)
	}
}

func TestWritePointsRoundtrip(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Particles.Count = 40
	reg, err := shape.Build(context.Background(), cfg, 7)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "points.csv")
	if err := writePoints(path, reg, 4); err != nil {
		t.Fatalf("writing points: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rows []PointRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("parsing points: %v", err)
	}
	if want := shape.Count * 10; len(rows) != want {
		t.Errorf("expected %d rows, got %d", want, len(rows))
	}
}

func TestWritePNGDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.png")
	if err := writePNG(path, frontView(shape.GenerateSphere(500, 12), viewExtent)); err != nil {
		t.Fatalf("writing png: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, previewSize, previewSize) {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}
