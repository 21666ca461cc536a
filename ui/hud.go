package ui

import (
	"fmt"
	"math"
	"path/filepath"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/framebench/harness"
	"github.com/pthm-cable/framebench/telemetry"
)

// Stress slider range.
const (
	MinStressDraws = 1
	MaxStressDraws = 500
)

// HUDData holds all the data needed to render the HUD.
type HUDData struct {
	Title       string
	FPS         int32
	Ticks       int
	StressDraws int
	Exporting   bool
	Last        *harness.ExportResult
	Window      telemetry.Report
	Perf        telemetry.PerfStats
}

// HUD renders the statistics panel in the top-left corner.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewHUD creates a HUD panel at (x, y).
func NewHUD(x, y, width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   260,
	}
}

// Bounds returns the panel rectangle from the last Draw.
func (h *HUD) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(h.x), Y: float32(h.y), Width: float32(h.width), Height: float32(h.height)}
}

// Contains reports whether a screen point lies on the panel. Clicks on the
// panel operate its controls and must not trigger an export.
func (h *HUD) Contains(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, h.Bounds())
}

// Draw renders the HUD and returns the stress-draws value selected on the slider.
func (h *HUD) Draw(data HUDData) int {
	r := h.renderer
	pad := r.Theme.Padding
	inner := h.width - pad*2

	r.DrawPanel(h.x, h.y, h.width, h.height)
	x := h.x + pad
	y := h.y + pad

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 26

	y = r.DrawSectionHeader(x, y, "Frame")
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d (tick %d)", data.FPS, data.Ticks))
	y = r.DrawLabelValue(x, y, "Draw avg", fmt.Sprintf("%.2f ms", telemetry.DurationMs(data.Perf.AvgDraw)))
	y = r.DrawLabelValue(x, y, "Draw max", fmt.Sprintf("%.2f ms", telemetry.DurationMs(data.Perf.MaxDraw)))

	y = r.DrawSectionHeader(x, y+4, fmt.Sprintf("Window (%d samples)", data.Perf.Buffered))
	y = r.DrawLabelValue(x, y, "Moved", groupText(data.Window.Moved))
	y = r.DrawLabelValue(x, y, "Static", groupText(data.Window.Static))
	y = r.DrawLabelValue(x, y, "Difference", fmt.Sprintf("%.2f ms", data.Window.Difference))
	moved := float32(0)
	if total := data.Window.Total(); total > 0 {
		moved = float32(data.Window.Moved.Count) / float32(total)
	}
	y = r.DrawBar(x, y, "Moved share", moved, inner)

	y = r.DrawSectionHeader(x, y+4, "Export")
	y = h.drawExport(x, y, data)

	rl.DrawText(fmt.Sprintf("Stress draws: %d", data.StressDraws), x, y+4, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight + 4
	value := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner - 40), Height: 16},
		"", fmt.Sprintf("%d", MaxStressDraws),
		float32(data.StressDraws), MinStressDraws, MaxStressDraws,
	)
	y += 16 + pad

	h.height = y - h.y
	return int(math.Round(float64(value)))
}

func (h *HUD) drawExport(x, y int32, data HUDData) int32 {
	r := h.renderer
	if data.Exporting {
		y = r.DrawLabelValueColor(x, y, "State", "packaging...", r.Theme.BusyColor)
	} else {
		y = r.DrawLabelValue(x, y, "State", "idle (click to export)")
	}

	last := data.Last
	switch {
	case last == nil:
		return r.DrawLabelValue(x, y, "Last", "none")
	case last.Err != nil:
		return r.DrawLabelValueColor(x, y, "Last", fmt.Sprintf("#%d failed", last.Seq), r.Theme.ErrorColor)
	default:
		return r.DrawLabelValue(x, y, "Last", fmt.Sprintf("#%d %s (%d)", last.Seq, filepath.Base(last.Path), last.Samples))
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

func groupText(g telemetry.GroupStats) string {
	return fmt.Sprintf("n=%d  %.2f ± %.2f ms", g.Count, g.Mean, g.StdDev)
}
