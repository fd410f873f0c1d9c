// Package game runs the simulation in an ebiten window.
package game

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/swirl/internal/config"
	"github.com/olivierh59500/swirl/internal/input"
	"github.com/olivierh59500/swirl/internal/particle"
	"github.com/olivierh59500/swirl/internal/physics"
	"github.com/olivierh59500/swirl/internal/sim"
)

var (
	hudColor       = color.RGBA{150, 150, 150, 255}
	lightningColor = color.RGBA{150, 255, 255, 255}
)

// modeKeys binds digit keys to modes, in the order they are checked.
var modeKeys = []struct {
	key  ebiten.Key
	mode physics.Mode
}{
	{ebiten.KeyDigit0, physics.FreeField},
	{ebiten.KeyDigit1, physics.ShapeHeart},
	{ebiten.KeyDigit2, physics.ShapeText},
}

// pressedMode returns the mode of the highest digit key reported by pressed.
func pressedMode(pressed func(ebiten.Key) bool) (physics.Mode, bool) {
	var (
		mode physics.Mode
		ok   bool
	)
	for _, mk := range modeKeys {
		if pressed(mk.key) {
			mode, ok = mk.mode, true
		}
	}
	return mode, ok
}

// Game implements ebiten.Game on top of a Simulation.
type Game struct {
	sim     *sim.Simulation
	source  input.Source // nil reads the mouse and touches
	palette particle.Palette
	width   float64
	height  float64
	margin  float64
	fade    color.RGBA
	start   time.Time
	rng     *rand.Rand
	logger  *zap.Logger

	hands  []input.Hand
	states []particle.State
}

// New creates a Game. A nil source uses the pointer as hands.
func New(s *sim.Simulation, cfg *config.Config, source input.Source, logger *zap.Logger) *Game {
	return &Game{
		sim:     s,
		source:  source,
		palette: cfg.Palette(),
		width:   cfg.Simulation.Width,
		height:  cfg.Simulation.Height,
		margin:  cfg.Input.HandMargin,
		fade:    color.RGBA{A: cfg.Render.TrailFade},
		start:   time.Now(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger.Named("game"),
		states:  make([]particle.State, 0, s.Len()),
	}
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, cfg *config.Config) error {
	ebiten.SetWindowSize(int(cfg.Simulation.Width), int(cfg.Simulation.Height))
	ebiten.SetWindowTitle(cfg.Render.Title)
	ebiten.SetTPS(cfg.Render.TPS)
	// Trails come from fading the previous frame instead of clearing it.
	ebiten.SetScreenClearedEveryFrame(false)
	return ebiten.RunGame(g)
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.handleInput()

	if g.source != nil {
		g.hands = g.source.Hands(g.sim.Tick())
	} else {
		g.hands = pointerHands(g.hands[:0])
	}
	return g.sim.Step(input.Classify(g.hands, g.width, g.height, g.margin))
}

// handleInput processes keyboard control events
func (g *Game) handleInput() {
	if mode, ok := pressedMode(inpututil.IsKeyJustPressed); ok {
		if err := g.sim.SetMode(mode); err != nil {
			g.logger.Warn("Mode switch rejected", zap.Stringer("mode", mode), zap.Error(err))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sim.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.sim.TriggerExplosion()
	}
}

// pointerHands reads the mouse (left button grabs, right button opens) and
// every touch as an open hand.
func pointerHands(dst []input.Hand) []input.Hand {
	mx, my := ebiten.CursorPosition()
	cursor := r2.Vec{X: float64(mx), Y: float64(my)}
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		dst = append(dst, input.Hand{Pos: cursor, Grabbing: true})
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		dst = append(dst, input.Hand{Pos: cursor})
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		tx, ty := ebiten.TouchPosition(id)
		dst = append(dst, input.Hand{Pos: r2.Vec{X: float64(tx), Y: float64(ty)}})
	}
	return dst
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	w, h := float32(g.width), float32(g.height)
	vector.DrawFilledRect(screen, 0, 0, w, h, g.fade, false)

	mode := g.sim.Mode()
	points := input.Points(g.hands, g.width, g.height, g.margin)
	for i, p := range points {
		drawHand(screen, p, g.hands[i].Grabbing, mode)
	}
	if len(points) == 2 {
		g.drawLightning(screen, points[0], points[1])
	}

	g.states = g.sim.Snapshot(g.states)
	elapsed := time.Since(g.start)
	for _, st := range g.states {
		col := g.palette.Color(st, elapsed)
		x, y := float32(st.Pos.X), float32(st.Pos.Y)
		if end, ok := g.palette.Tail(st); ok {
			vector.StrokeLine(screen, x, y, float32(end.X), float32(end.Y), float32(st.Size), col, true)
		} else {
			vector.DrawFilledCircle(screen, x, y, float32(st.Size), col, true)
		}
	}

	text.Draw(screen, fmt.Sprintf("Mode (0-2): %s", modeLabel(mode)), basicfont.Face7x13, 10, 24, hudColor)
}

// Layout returns the screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.width), int(g.height)
}

// drawHand marks a hand: a black hole for a grab and a ring for an open hand
// in free field, plain markers while a shape is shown.
func drawHand(screen *ebiten.Image, p r2.Vec, grabbing bool, mode physics.Mode) {
	x, y := float32(p.X), float32(p.Y)
	switch {
	case mode == physics.FreeField && grabbing:
		vector.DrawFilledCircle(screen, x, y, 15, color.Black, true)
		vector.StrokeCircle(screen, x, y, 18, 2, color.RGBA{255, 50, 50, 255}, true)
		vector.StrokeCircle(screen, x, y, 120, 1, color.RGBA{100, 0, 0, 255}, true)
	case mode == physics.FreeField:
		vector.StrokeCircle(screen, x, y, 20, 2, color.RGBA{0, 255, 255, 255}, true)
	case grabbing:
		vector.DrawFilledCircle(screen, x, y, 15, color.RGBA{255, 100, 100, 255}, true)
	default:
		vector.StrokeCircle(screen, x, y, 15, 1, color.RGBA{200, 200, 200, 255}, true)
	}
}

// drawLightning joins two hands with a bolt bent at a jittered midpoint.
func (g *Game) drawLightning(screen *ebiten.Image, a, b r2.Vec) {
	mid := r2.Scale(0.5, r2.Add(a, b))
	mid.X += float64(g.rng.Intn(41) - 20)
	mid.Y += float64(g.rng.Intn(41) - 20)
	vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(mid.X), float32(mid.Y), 2, lightningColor, true)
	vector.StrokeLine(screen, float32(mid.X), float32(mid.Y), float32(b.X), float32(b.Y), 2, lightningColor, true)
}

func modeLabel(m physics.Mode) string {
	switch m {
	case physics.ShapeHeart:
		return "Heart"
	case physics.ShapeText:
		return "Text"
	default:
		return "God Hand"
	}
}
