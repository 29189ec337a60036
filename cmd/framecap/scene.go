package main

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/framecap"
)

// renderScene draws the demo scene for frame n into img's CPU-side data.
func renderScene(img *framecap.Image, n int) error {
	w, h := int(img.Width()), int(img.Height())
	if w == 0 || h == 0 {
		return nil
	}

	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()

	drawBackground(dc, w, h)
	drawShapes(dc, w, h)
	drawSpinner(dc, w, h, n)

	if err := dc.FlushGPU(); err != nil {
		return err
	}
	copy(img.Data, dc.ResizeTarget().Data())
	return nil
}

func drawBackground(dc *gg.Context, w, h int) {
	steps := 64
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps)
		dc.SetColor(gg.RGB(0.1+t*0.4, 0.2+t*0.3, 0.4+t*0.2))
		y := float64(h) * t
		dc.DrawRectangle(0, y, float64(w), float64(h)/float64(steps)+1)
		_ = dc.Fill()
	}
}

func drawShapes(dc *gg.Context, w, h int) {
	r := math.Min(float64(w), float64(h)) / 8
	cx, cy := float64(w)/4, float64(h)/2

	dc.SetRGBA(1, 0.3, 0.3, 0.8)
	dc.DrawCircle(cx-r/2, cy, r)
	_ = dc.Fill()

	dc.SetRGBA(0.3, 1, 0.3, 0.8)
	dc.DrawCircle(cx+r/2, cy, r)
	_ = dc.Fill()

	dc.SetRGBA(0.3, 0.3, 1, 0.8)
	dc.DrawCircle(cx, cy+r*0.8, r)
	_ = dc.Fill()
}

// drawSpinner draws a ring of squares rotated by frame number so
// consecutive frames differ.
func drawSpinner(dc *gg.Context, w, h, n int) {
	side := math.Min(float64(w), float64(h)) / 10
	dc.Push()
	dc.Translate(float64(w)*0.7, float64(h)/2)
	dc.Rotate(float64(n) * math.Pi / 16)

	for i := 0; i < 8; i++ {
		dc.Push()
		dc.Rotate(float64(i) * math.Pi / 4)
		dc.Translate(side*2, 0)
		dc.SetColor(gg.HSL(float64(i)*45, 0.8, 0.6))
		dc.DrawRectangle(-side/2, -side/2, side, side)
		_ = dc.Fill()
		dc.Pop()
	}
	dc.Pop()
}
