package dodge

import "math"

// MaskCellUnits is the size of one mask cell in field units. Collision masks
// are sampled on this grid, so a 150x150 unit player body yields a 15x15 mask.
const MaskCellUnits = 10

// Mask is a binary collision bitmap. Cells are MaskCellUnits wide in field
// space. Meteors regenerate a rotated mask each frame so collisions follow the
// visible tilt instead of an axis-aligned box.
type Mask struct {
	W, H int
	bits []bool
}

// NewMaskFromArt builds a mask from ASCII art rows. Any non-space rune is
// solid. Rows may have different lengths; short rows are padded with empty
// cells.
func NewMaskFromArt(rows []string) Mask {
	h := len(rows)
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	m := Mask{W: w, H: h, bits: make([]bool, w*h)}
	for y, row := range rows {
		for x, r := range row {
			if r != ' ' {
				m.bits[y*w+x] = true
			}
		}
	}
	return m
}

// Solid reports whether the cell at (cx, cy) is solid. Out-of-bounds cells
// are empty.
func (m Mask) Solid(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= m.W || cy >= m.H {
		return false
	}
	return m.bits[cy*m.W+cx]
}

// SolidAt samples the mask at a point given in field units relative to the
// mask's top-left corner.
func (m Mask) SolidAt(fx, fy float64) bool {
	if fx < 0 || fy < 0 {
		return false
	}
	return m.Solid(int(fx)/MaskCellUnits, int(fy)/MaskCellUnits)
}

// WidthUnits returns the mask width in field units.
func (m Mask) WidthUnits() float64 { return float64(m.W * MaskCellUnits) }

// HeightUnits returns the mask height in field units.
func (m Mask) HeightUnits() float64 { return float64(m.H * MaskCellUnits) }

// CellCount returns the number of solid cells.
func (m Mask) CellCount() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Rotate returns the mask rotated by deg around its center. The result grid
// is expanded to the rotated bounding box, center preserved, so the sprite
// never clips its own frame. Sampling is nearest-cell by inverse rotation.
func (m Mask) Rotate(deg float64) Mask {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	absSin, absCos := math.Abs(sin), math.Abs(cos)

	// The epsilon keeps quarter turns from gaining a row when cos/sin carry
	// float noise.
	w, h := float64(m.W), float64(m.H)
	newW := int(math.Ceil(w*absCos + h*absSin - 1e-9))
	newH := int(math.Ceil(w*absSin + h*absCos - 1e-9))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	out := Mask{W: newW, H: newH, bits: make([]bool, newW*newH)}
	cx, cy := w/2, h/2
	ncx, ncy := float64(newW)/2, float64(newH)/2

	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			// Cell center in the rotated grid, mapped back into the
			// source grid by the inverse rotation.
			dx := float64(x) + 0.5 - ncx
			dy := float64(y) + 0.5 - ncy
			sx := dx*cos + dy*sin + cx
			sy := -dx*sin + dy*cos + cy
			if m.Solid(int(math.Floor(sx)), int(math.Floor(sy))) {
				out.bits[y*newW+x] = true
			}
		}
	}
	return out
}

// MasksOverlap reports whether two masks overlap when placed at the given
// top-left positions in field units. It walks the solid cells of the smaller
// mask and probes the other at the corresponding offsets.
func MasksOverlap(a Mask, ax, ay float64, b Mask, bx, by float64) bool {
	if a.CellCount() > b.CellCount() {
		a, b = b, a
		ax, ay, bx, by = bx, by, ax, ay
	}
	for cy := 0; cy < a.H; cy++ {
		for cx := 0; cx < a.W; cx++ {
			if !a.bits[cy*a.W+cx] {
				continue
			}
			fx := ax + (float64(cx)+0.5)*MaskCellUnits
			fy := ay + (float64(cy)+0.5)*MaskCellUnits
			if b.SolidAt(fx-bx, fy-by) {
				return true
			}
		}
	}
	return false
}

// Sprite is a sequence of animation frame masks sharing one footprint.
type Sprite struct {
	frames []Mask
}

// NewSprite builds a sprite from per-frame ASCII art.
func NewSprite(frames ...[]string) *Sprite {
	s := &Sprite{frames: make([]Mask, 0, len(frames))}
	for _, art := range frames {
		s.frames = append(s.frames, NewMaskFromArt(art))
	}
	return s
}

// FrameCount returns the number of animation frames.
func (s *Sprite) FrameCount() int { return len(s.frames) }

// Frame returns the mask for frame i, wrapping out-of-range indices.
func (s *Sprite) Frame(i int) Mask {
	if len(s.frames) == 0 {
		return Mask{}
	}
	return s.frames[((i%len(s.frames))+len(s.frames))%len(s.frames)]
}

// playerSprite is the 15x15 cell (150x150 field unit) ship with a two-frame
// exhaust flicker.
var playerSprite = NewSprite(
	[]string{
		"       #       ",
		"      ###      ",
		"      ###      ",
		"     #####     ",
		"     #####     ",
		"     #####     ",
		"    #######    ",
		"    #######    ",
		"   #########   ",
		"   #########   ",
		"  ###########  ",
		" ## ####### ## ",
		" #  ####### ## ",
		"     ## ##     ",
		"    ##   ##    ",
	},
	[]string{
		"       #       ",
		"      ###      ",
		"      ###      ",
		"     #####     ",
		"     #####     ",
		"     #####     ",
		"    #######    ",
		"    #######    ",
		"   #########   ",
		"   #########   ",
		"  ###########  ",
		" ## ####### ## ",
		" ## ####### ## ",
		"     #####     ",
		"      ###      ",
	},
)

// meteorSprite is the 10x10 cell (100x100 field unit) rock with a two-frame
// shimmer.
var meteorSprite = NewSprite(
	[]string{
		"   ####   ",
		"  ######  ",
		" ######## ",
		"##########",
		"##########",
		"##########",
		"##########",
		" ######## ",
		"  ######  ",
		"   ####   ",
	},
	[]string{
		"   ####   ",
		"  ######  ",
		" ######## ",
		"######### ",
		"##########",
		"##########",
		" #########",
		" ######## ",
		"  ######  ",
		"    ###   ",
	},
)
