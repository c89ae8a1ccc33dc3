package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlemorph/shape"
)

// shapeKeys maps number keys to shape slots in order.
var shapeKeys = [shape.Count]int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive}

// handleResize keeps the camera viewport and panels in sync with the window.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	g.camera.Resize(float64(w), float64(h))
	g.perfPanel.SetPosition(perfPanelPos(int32(h)))
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.evaluator.Start()
	}
	for i, key := range shapeKeys {
		if rl.IsKeyPressed(key) {
			g.inputs.SelectShape(shape.ID(i))
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Restart()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHUD = !g.showHUD
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}

	g.handlePointer()
	g.handleCameraInput()
}

// handlePointer turns a left drag into interaction samples on the z=0 plane.
// Releasing the button deactivates the field where the pointer was.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	overBar := g.showHUD && g.shapeBar.Contains(w, h, mouse.X, mouse.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !overBar && !g.evaluator.Started() {
		g.evaluator.Start()
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && (g.pointerActive || !overBar) {
		if p, ok := g.camera.ScreenToPlane(float64(mouse.X), float64(mouse.Y)); ok {
			g.inputs.PostInteraction(p, true)
			g.pointerActive = true
		}
		return
	}

	if g.pointerActive {
		last := g.inputs.LastInteraction()
		g.inputs.PostInteraction(last.Point, false)
		g.pointerActive = false
	}
}

// handleCameraInput orbits on right drag and zooms on the wheel.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		speed := g.cfg.Camera.OrbitSpeed
		g.camera.Orbit(-float64(delta.X)*speed, float64(delta.Y)*speed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(-float64(wheel) * g.cfg.Camera.ZoomStep)
	}
}
