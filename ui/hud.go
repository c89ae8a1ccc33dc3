package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlemorph/shape"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	SessionID    string
	Particles    int
	BufferBytes  uint64
	Frame        uint64
	FPS          int32
	Started      bool
	Target       shape.ID
	Weights      [shape.Count]float64
	Color        rl.Color
	PointX       float64
	PointY       float64
	Activity     float64
	Input        string // what is driving the interaction point
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	status   PanelDescriptor
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		status:   statusPanel(),
	}
}

func hudData(data any) *HUDData {
	return data.(*HUDData)
}

// pointShown hides the point readout while the field has faded out.
func pointShown(d any) bool {
	return hudData(d).Activity > 0.01
}

func statusPanel() PanelDescriptor {
	morphFields := make([]FieldDescriptor, 0, shape.Count+2)
	morphFields = append(morphFields, FieldDescriptor{
		ID:         "target",
		Label:      "Target",
		Widget:     WidgetText,
		TextGetter: func(d any) string { return hudData(d).Target.String() },
	})
	for _, id := range shape.All() {
		morphFields = append(morphFields, FieldDescriptor{
			ID:     "w_" + id.String(),
			Label:  id.String(),
			Widget: WidgetBar,
			Range:  DefaultRange(),
			Getter: func(d any) float32 { return float32(hudData(d).Weights[id]) },
			ColorGetter: func(d any) rl.Color {
				if hudData(d).Target == id {
					return DefaultTheme().BarFillActive
				}
				return DefaultTheme().BarFill
			},
		})
	}
	morphFields = append(morphFields, FieldDescriptor{
		ID:          "color",
		Label:       "Color",
		Widget:      WidgetColorSwatch,
		ColorGetter: func(d any) rl.Color { return hudData(d).Color },
	})

	return PanelDescriptor{
		ID:    "status",
		Title: "Cloud",
		Width: 260,
		Sections: []SectionDescriptor{
			{ID: "morph", Title: "Morph", Fields: morphFields},
			{
				ID:    "interaction",
				Title: "Interaction",
				Fields: []FieldDescriptor{
					{
						ID:     "activity",
						Label:  "Activity",
						Widget: WidgetBar,
						Range:  DefaultRange(),
						Getter: func(d any) float32 { return float32(hudData(d).Activity) },
					},
					{
						ID:      "point_x",
						Label:   "Point X",
						Widget:  WidgetCenteredBar,
						Range:   FieldRange{Min: -30, Max: 30},
						Visible: pointShown,
						Getter:  func(d any) float32 { return float32(hudData(d).PointX) },
					},
					{
						ID:      "point_y",
						Label:   "Point Y",
						Widget:  WidgetCenteredBar,
						Range:   FieldRange{Min: -20, Max: 20},
						Visible: pointShown,
						Getter:  func(d any) float32 { return float32(hudData(d).PointY) },
					},
					{
						ID:         "input",
						Label:      "Input",
						Widget:     WidgetText,
						TextGetter: func(d any) string { return hudData(d).Input },
					},
				},
			},
		},
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %s | Buffers: %s | Session: %s",
			humanize.Comma(int64(data.Particles)), humanize.Bytes(data.BufferBytes), shortID(data.SessionID)),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | FPS: %d", data.Frame, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	if !data.Started {
		rl.DrawText("Waiting to start", 10, 75, 16, rl.Yellow)
	}

	x := data.ScreenWidth - h.status.Width - 10
	h.renderer.DrawPanelDescriptor(x, 10, h.status, &data)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DrawCentered draws a message centered on screen.
func (h *HUD) DrawCentered(screenWidth, screenHeight int32, text string, fontSize int32, color rl.Color) {
	w := rl.MeasureText(text, fontSize)
	rl.DrawText(text, (screenWidth-w)/2, (screenHeight-fontSize)/2, fontSize, color)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Total      time.Duration
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData, phases []string) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range phases {
		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
