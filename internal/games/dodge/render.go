package dodge

import (
	"fmt"

	"github.com/vovakirdan/space-dodge/internal/core"
)

const hudRows = 2

// Render draws the current state into the screen buffer. The top two rows are
// the HUD; the playfield below is a projection of the virtual field.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if dst.Width() <= 0 || dst.Height() <= hudRows {
		return
	}

	g.drawHUD(dst)

	jx, jy := g.shakeOffset()
	g.drawMeteors(dst, jx, jy)
	g.drawPowerUps(dst, jx, jy)
	g.drawPlayer(dst, jx, jy)

	if g.paused {
		g.drawOverlay(dst, "PAUSED", "press p to resume")
	}
	if g.gameOver {
		g.drawOverlay(dst,
			"GAME OVER",
			fmt.Sprintf("survived %ds", int(g.elapsedMs/1000)),
			"r restart / q quit",
		)
	}
}

// project maps field coordinates onto playfield cells.
func (g *Game) project(dst *core.Screen, fx, fy float64) (int, int) {
	px := int(fx * float64(dst.Width()) / float64(g.cfg.Field.Width))
	py := hudRows + int(fy*float64(dst.Height()-hudRows)/float64(g.cfg.Field.Height))
	return px, py
}

// shakeOffset returns a small camera jitter while the shake timer runs. It is
// derived from the tick counter so rendering never consumes simulation RNG.
func (g *Game) shakeOffset() (int, int) {
	if g.shakeMs <= 0 {
		return 0, 0
	}
	jx := int(g.tick%3) - 1
	jy := int((g.tick/2)%3) - 1
	return jx, jy
}

// playerBlinking reports whether the invulnerability blink currently hides
// the ship.
func (g *Game) playerBlinking() bool {
	return g.invulnMs > 0 && int(g.invulnMs/100)%2 == 0
}

func (g *Game) drawPlayer(dst *core.Screen, jx, jy int) {
	if g.playerBlinking() {
		return
	}
	color := core.ColorBrightWhite
	if g.shieldArmed {
		color = core.ColorBrightCyan
	}
	mask := playerSprite.Frame(g.playerFrame)
	g.drawMask(dst, mask, g.playerX-float64(g.cfg.Player.Width)/2, g.playerTop(), '█', color, jx, jy)
}

func (g *Game) drawMeteors(dst *core.Screen, jx, jy int) {
	for _, m := range g.meteors {
		g.drawMask(dst, m.Mask(), m.Left(), m.Top(), '▓', core.ColorOrange, jx, jy)
	}
}

func (g *Game) drawPowerUps(dst *core.Screen, jx, jy int) {
	for _, p := range g.powerups {
		color := core.ColorBrightYellow
		r := '◎'
		if p.Kind == PowerUpShield {
			color = core.ColorBrightCyan
			r = '◍'
		}
		x, y := g.project(dst, p.X, p.Y)
		dst.SetColored(x+jx, y+jy, r, color)
	}
}

// drawMask projects every solid mask cell into the playfield. Cells landing
// above the HUD are clipped so falling sprites never overwrite the status
// rows.
func (g *Game) drawMask(dst *core.Screen, mask Mask, left, top float64, r rune, color core.Color, jx, jy int) {
	for cy := 0; cy < mask.H; cy++ {
		for cx := 0; cx < mask.W; cx++ {
			if !mask.Solid(cx, cy) {
				continue
			}
			fx := left + (float64(cx)+0.5)*MaskCellUnits
			fy := top + (float64(cy)+0.5)*MaskCellUnits
			x, y := g.project(dst, fx, fy)
			if y < hudRows {
				continue
			}
			dst.SetColored(x+jx, y+jy, r, color)
		}
	}
}

func (g *Game) drawHUD(dst *core.Screen) {
	sr := "-"
	if g.agg.spawned > 0 {
		sr = fmt.Sprintf("%.2f", float64(g.agg.avoided)/float64(g.agg.spawned))
	}
	line := fmt.Sprintf("TIME %3ds  DIFF %.2f  LIVES %d  SPD %.2f  SR %s  NMIS %d  SHLD %d",
		int(g.elapsedMs/1000), g.diff.Value(), g.lives, g.fall.Value(), sr,
		g.agg.nearMisses, g.agg.shields)
	dst.DrawTextColored(0, 0, line, core.ColorBrightWhite)

	status := ""
	if g.shieldArmed {
		status += " [SHIELD]"
	}
	if g.slowMoMs > 0 {
		status += " [SLOW-MO]"
	}
	if g.invulnMs > 0 {
		status += " [INVULN]"
	}
	if status != "" {
		dst.DrawTextColored(0, 1, status[1:], core.ColorBrightCyan)
	}
}

// drawOverlay draws a centered bordered message box over the playfield.
func (g *Game) drawOverlay(dst *core.Screen, lines ...string) {
	w := 0
	for _, l := range lines {
		if len(l) > w {
			w = len(l)
		}
	}
	w += 4
	h := len(lines) + 2
	x := (dst.Width() - w) / 2
	y := (dst.Height() - h) / 2
	box := core.NewRect(x, y, w, h)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box)
	for i, l := range lines {
		dst.DrawText(x+(w-len(l))/2, y+1+i, l)
	}
}
