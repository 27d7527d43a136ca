package visualization

import (
	"fmt"
	"image/color"
	"math"

	"maneuver-sim/internal/common"
	"maneuver-sim/internal/simulation"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	agentRadiusOnScreen = 5.0
	headingLineLength   = 14.0
	padding             = 50.0
)

var (
	backgroundColor   = color.RGBA{230, 230, 230, 255}
	rangeColor        = color.RGBA{0, 0, 200, 40}
	agentColor        = color.RGBA{0, 0, 255, 255}
	specialAgentColor = color.RGBA{200, 120, 0, 255}
	headingColor      = color.RGBA{40, 40, 40, 255}
	contactColor      = color.RGBA{255, 0, 0, 160}
)

// Renderer implements ebiten.Game. Each Update advances the manager by one tick
// until the configured duration has elapsed.
type Renderer struct {
	manager  *simulation.Manager
	timeStep float64
	duration float64
	paused   bool

	screenWidth  int
	screenHeight int

	// world to screen transform
	scale   float64
	offsetX float64
	offsetY float64
}

// NewRenderer creates a renderer driving manager with the given tick length.
func NewRenderer(manager *simulation.Manager, timeStep, duration float64) *Renderer {
	return &Renderer{
		manager:  manager,
		timeStep: timeStep,
		duration: duration,
		scale:    1,
	}
}

// Update is called every ebiten tick. Space toggles pause.
func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.paused = !r.paused
	}
	if !r.paused && r.manager.Time() < r.duration {
		r.manager.Svc(r.timeStep)
	}
	r.calculateTransform()
	return nil
}

// calculateTransform fits every agent together with its detection range onto the screen.
func (r *Renderer) calculateTransform() {
	agents := r.manager.Agents()
	if len(agents) == 0 {
		r.scale = 1.0
		r.offsetX = float64(r.screenWidth) / 2.0
		r.offsetY = float64(r.screenHeight) / 2.0
		return
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, a := range agents {
		p, rng := a.Position(), a.DetectionRange()
		minX = math.Min(minX, p.X-rng)
		maxX = math.Max(maxX, p.X+rng)
		minY = math.Min(minY, p.Y-rng)
		maxY = math.Max(maxY, p.Y+rng)
	}

	worldWidth := maxX - minX
	worldHeight := maxY - minY
	if worldWidth == 0 {
		worldWidth = 1
	}
	if worldHeight == 0 {
		worldHeight = 1
	}

	scaleX := (float64(r.screenWidth) - 2*padding) / worldWidth
	scaleY := (float64(r.screenHeight) - 2*padding) / worldHeight
	r.scale = math.Min(scaleX, scaleY)
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		r.scale = 1.0
	}

	centerX := (minX + maxX) / 2.0
	centerY := (minY + maxY) / 2.0
	r.offsetX = float64(r.screenWidth)/2.0 - centerX*r.scale
	r.offsetY = float64(r.screenHeight)/2.0 + centerY*r.scale
}

// worldToScreen maps world coordinates (Y up) to screen coordinates (Y down).
func (r *Renderer) worldToScreen(p common.Vector) (float32, float32) {
	return float32(p.X*r.scale + r.offsetX), float32(-p.Y*r.scale + r.offsetY)
}

// Draw renders ranges, contacts of the last tick, then agents on top.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	agents := r.manager.Agents()
	byID := make(map[string]simulation.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID()] = a
		if rng := float32(a.DetectionRange() * r.scale); rng > 0 {
			x, y := r.worldToScreen(a.Position())
			vector.DrawFilledCircle(screen, x, y, rng, rangeColor, true)
		}
	}

	report := r.manager.LastReport()
	for _, c := range report.Contacts {
		if !c.Detected {
			continue
		}
		observer, ok1 := byID[c.Observer]
		target, ok2 := byID[c.Target]
		if !ok1 || !ok2 {
			continue
		}
		x0, y0 := r.worldToScreen(observer.Position())
		x1, y1 := r.worldToScreen(target.Position())
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, contactColor, true)
	}

	for _, a := range agents {
		x, y := r.worldToScreen(a.Position())
		dir := common.Direction(a.Heading())
		vector.StrokeLine(screen, x, y,
			x+float32(dir.X*headingLineLength), y-float32(dir.Y*headingLineLength),
			2, headingColor, true)

		clr := agentColor
		if _, special := a.(*simulation.TaggedAgent); special {
			clr = specialAgentColor
		}
		vector.DrawFilledCircle(screen, x, y, agentRadiusOnScreen, clr, true)
	}

	r.drawDebugInfo(screen, report)
}

func (r *Renderer) drawDebugInfo(screen *ebiten.Image, report simulation.TickReport) {
	s := report.Summary()
	msg := fmt.Sprintf("Time: %.2f / %.2f  Tick: %d\n", r.manager.Time(), r.duration, r.manager.Ticks())
	msg += fmt.Sprintf("FPS: %.1f, TPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	msg += fmt.Sprintf("Agents: %d, Detections: %d/%d\n", r.manager.Len(), s.Detections, s.Pairs)
	if s.Pairs > 0 {
		msg += fmt.Sprintf("Pair distance: mean %.2f, std %.2f\n", s.MeanDistance, s.StdDevDistance)
	}
	if r.paused {
		msg += "PAUSED (space to resume)\n"
	}
	ebitenutil.DebugPrint(screen, msg)
}

// Layout is called when the window size changes.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	r.screenWidth = outsideWidth
	r.screenHeight = outsideHeight
	return r.screenWidth, r.screenHeight
}
