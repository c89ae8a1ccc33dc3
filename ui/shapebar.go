package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlemorph/shape"
)

// ShapeBar is a row of buttons, one per shape, acting as a shape-selection
// source.
type ShapeBar struct {
	buttonW, buttonH float32
	gap              float32
}

// NewShapeBar creates a shape button row.
func NewShapeBar() *ShapeBar {
	return &ShapeBar{buttonW: 90, buttonH: 28, gap: 8}
}

// Draw renders the buttons centered above the bottom edge and returns the
// clicked shape, if any. The current target is marked.
func (b *ShapeBar) Draw(screenWidth, screenHeight int32, current shape.ID) (shape.ID, bool) {
	total := float32(shape.Count)*b.buttonW + float32(shape.Count-1)*b.gap
	x := (float32(screenWidth) - total) / 2
	y := float32(screenHeight) - b.buttonH - 40

	picked, ok := shape.ID(0), false
	for _, id := range shape.All() {
		label := id.String()
		if id == current {
			label = "> " + label
		}
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: b.buttonW, Height: b.buttonH}, label) {
			picked, ok = id, true
		}
		x += b.buttonW + b.gap
	}
	return picked, ok
}

// Contains reports whether a screen point lies over the button row, so that
// clicks there are not also treated as pointer input.
func (b *ShapeBar) Contains(screenWidth, screenHeight int32, px, py float32) bool {
	total := float32(shape.Count)*b.buttonW + float32(shape.Count-1)*b.gap
	x := (float32(screenWidth) - total) / 2
	y := float32(screenHeight) - b.buttonH - 40
	return px >= x && px <= x+total && py >= y && py <= y+b.buttonH
}
