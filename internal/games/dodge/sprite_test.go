package dodge

import "testing"

func TestMaskFromArt(t *testing.T) {
	m := NewMaskFromArt([]string{
		" # ",
		"###",
		" # ",
	})

	if m.W != 3 || m.H != 3 {
		t.Fatalf("Mask should be 3x3, got %dx%d", m.W, m.H)
	}
	if m.CellCount() != 5 {
		t.Errorf("Plus shape should have 5 solid cells, got %d", m.CellCount())
	}
	if !m.Solid(1, 1) {
		t.Error("Center cell should be solid")
	}
	if m.Solid(0, 0) {
		t.Error("Corner cell should be empty")
	}
	if m.Solid(-1, 0) || m.Solid(3, 0) {
		t.Error("Out-of-bounds cells should be empty")
	}
}

func TestMaskSolidAt(t *testing.T) {
	m := NewMaskFromArt([]string{
		"# ",
		" #",
	})

	// Cell (0,0) spans field units [0,10)x[0,10).
	if !m.SolidAt(5, 5) {
		t.Error("Point inside solid cell should hit")
	}
	if m.SolidAt(15, 5) {
		t.Error("Point inside empty cell should miss")
	}
	if !m.SolidAt(15, 15) {
		t.Error("Point inside second solid cell should hit")
	}
	if m.SolidAt(-1, 5) {
		t.Error("Negative coordinates should miss")
	}
}

func TestMaskRotate90SwapsExtent(t *testing.T) {
	m := NewMaskFromArt([]string{
		"####",
		"####",
	})

	r := m.Rotate(90)
	if r.W != 2 || r.H != 4 {
		t.Errorf("4x2 rotated 90 should be 2x4, got %dx%d", r.W, r.H)
	}
	// A full rectangle stays full under a quarter turn.
	if r.CellCount() != 8 {
		t.Errorf("Rotated rectangle should keep all 8 cells, got %d", r.CellCount())
	}
}

func TestMaskRotateZeroIsIdentity(t *testing.T) {
	m := meteorSprite.Frame(0)
	r := m.Rotate(0)

	if r.W != m.W || r.H != m.H {
		t.Fatalf("Zero rotation should preserve extent, got %dx%d want %dx%d", r.W, r.H, m.W, m.H)
	}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if r.Solid(x, y) != m.Solid(x, y) {
				t.Fatalf("Zero rotation changed cell (%d,%d)", x, y)
			}
		}
	}
}

func TestMaskRotateSmallTiltKeepsRoughArea(t *testing.T) {
	m := meteorSprite.Frame(0)
	orig := m.CellCount()

	for _, deg := range []float64{-35, -15, 15, 35} {
		r := m.Rotate(deg)
		got := r.CellCount()
		if got < orig*8/10 || got > orig*12/10 {
			t.Errorf("Rotation by %.0f changed area too much: %d -> %d", deg, orig, got)
		}
	}
}

func TestMasksOverlap(t *testing.T) {
	a := NewMaskFromArt([]string{
		"##",
		"##",
	})
	b := NewMaskFromArt([]string{
		"##",
		"##",
	})

	// Coincident masks overlap.
	if !MasksOverlap(a, 0, 0, b, 0, 0) {
		t.Error("Coincident masks should overlap")
	}
	// Offset by half a cell still overlaps.
	if !MasksOverlap(a, 0, 0, b, 5, 5) {
		t.Error("Half-cell offset should overlap")
	}
	// Fully separated masks do not.
	if MasksOverlap(a, 0, 0, b, 100, 0) {
		t.Error("Separated masks should not overlap")
	}
	if MasksOverlap(a, 0, 0, b, 0, 100) {
		t.Error("Vertically separated masks should not overlap")
	}
}

func TestMasksOverlapRespectsHoles(t *testing.T) {
	ring := NewMaskFromArt([]string{
		"###",
		"# #",
		"###",
	})
	dot := NewMaskFromArt([]string{"#"})

	// Dot inside the hole: bounding boxes overlap, masks do not.
	if MasksOverlap(dot, 10, 10, ring, 0, 0) {
		t.Error("Dot inside the ring hole should not collide")
	}
	// Dot on the rim collides.
	if !MasksOverlap(dot, 0, 0, ring, 0, 0) {
		t.Error("Dot on the ring rim should collide")
	}
}

func TestSpriteFrames(t *testing.T) {
	if playerSprite.FrameCount() != 2 {
		t.Errorf("Player sprite should have 2 frames, got %d", playerSprite.FrameCount())
	}
	if meteorSprite.FrameCount() != 2 {
		t.Errorf("Meteor sprite should have 2 frames, got %d", meteorSprite.FrameCount())
	}

	if playerSprite.Frame(0).W != 15 || playerSprite.Frame(0).H != 15 {
		t.Errorf("Player mask should be 15x15, got %dx%d",
			playerSprite.Frame(0).W, playerSprite.Frame(0).H)
	}
	if meteorSprite.Frame(0).W != 10 || meteorSprite.Frame(0).H != 10 {
		t.Errorf("Meteor mask should be 10x10, got %dx%d",
			meteorSprite.Frame(0).W, meteorSprite.Frame(0).H)
	}

	// Frame indexing wraps.
	if meteorSprite.Frame(2).W != meteorSprite.Frame(0).W {
		t.Error("Frame index should wrap")
	}
}
