// Surface preview tool - interactive visualization of a Felt narrow-band
// level-set surface, polygonised and rendered every frame with sliders to
// drive its evolution.
//
// Usage: go run ./cmd/feltdemo
package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/feltech/felt"
	"github.com/feltech/felt/poly"
	"github.com/feltech/felt/surface"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	canvasSize   = 512
	panelWidth   = windowWidth - canvasSize - 30

	gridExtent    = 96
	partitionSize = 16
	numLayers     = 4
)

// DemoParams holds the sliders driving the surface's evolution each frame.
type DemoParams struct {
	Speed     float32
	NoiseAmp  float32
	Frequency float32
	Seed      uint32
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Felt Surface Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := DemoParams{
		Speed:     0.15,
		NoiseAmp:  0.6,
		Frequency: 0.12,
		Seed:      12345,
	}

	size := felt.VecDi{gridExtent, gridExtent}
	partSize := felt.VecDi{partitionSize, partitionSize}

	var s *surface.Surface
	var p *poly.Polygoniser
	noise := opensimplex.New(int64(params.Seed))

	reseed := func() {
		var err error
		s, err = surface.NewSurface(size, partSize, numLayers)
		if err != nil {
			panic(err)
		}
		if err := s.Seed(felt.VecDi{0, 0}); err != nil {
			panic(err)
		}
		p, err = poly.NewPolygoniser(s)
		if err != nil {
			panic(err)
		}
		if err := p.MarchAll(); err != nil {
			panic(err)
		}
	}
	reseed()

	var time float32
	animating := true
	var lastHit felt.VecDf
	haveHit := false

	scale := float32(canvasSize) / float32(gridExtent)
	toScreen := func(v felt.VecDf) rl.Vector2 {
		return rl.Vector2{
			X: 10 + float32(v[0]+gridExtent/2)*scale,
			Y: 10 + float32(v[1]+gridExtent/2)*scale,
		}
	}

	for !rl.WindowShouldClose() {
		if animating {
			time += rl.GetFrameTime()

			if err := s.UpdateStart(); err != nil {
				panic(err)
			}
			for i := 0; i < s.Parts(); i++ {
				for _, cell := range s.Layer(i, 0) {
					rel := cell.ToFloat()
					n := noise.Eval3(rel[0]*float64(params.Frequency), rel[1]*float64(params.Frequency), float64(time)*0.3)
					dv := float64(params.Speed) * (1 + float64(params.NoiseAmp)*n)
					if dv > 1 {
						dv = 1
					} else if dv < -1 {
						dv = -1
					}
					if err := s.Delta(cell, dv); err != nil {
						panic(err)
					}
				}
			}
			if err := s.UpdateEnd(); err != nil {
				panic(err)
			}
			p.Notify()
			if err := p.March(); err != nil {
				panic(err)
			}
		}

		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			mx, my := rl.GetMouseX(), rl.GetMouseY()
			gx := (float64(mx) - 10) / float64(scale)
			gy := (float64(my) - 10) / float64(scale)
			if gx >= 0 && gx < gridExtent && gy >= 0 && gy < gridExtent {
				origin := felt.VecDf{gx - gridExtent/2, gy - gridExtent/2}
				hit := s.Ray(origin, felt.VecDf{1, 0})
				haveHit = !hit.IsNull()
				if haveHit {
					lastHit = hit
				}
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawRectangleLines(10, 10, canvasSize, canvasSize, rl.DarkGray)
		for _, child := range p.Children() {
			if !child.IsActive() {
				continue
			}
			vtxs := child.Vtxs()
			for _, spx := range child.Spxs() {
				a := toScreen(vtxs[spx.Idxs[0]].Pos)
				b := toScreen(vtxs[spx.Idxs[1]].Pos)
				rl.DrawLineEx(a, b, 2, rl.Blue)
			}
		}
		if haveHit {
			hp := toScreen(lastHit)
			rl.DrawCircleV(hp, 5, rl.Red)
		}

		statsY := int32(canvasSize + 25)
		rl.DrawText(fmt.Sprintf("Zero layer: %d cells  Parts: %d", s.LayerSize(0), s.Parts()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f", time), 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(canvasSize + 20)
		panelY := float32(10)

		rl.DrawText("Surface Evolution Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Speed (mean outward velocity)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSpeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1.0", "1.0",
			params.Speed, -1.0, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Speed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		params.Speed = newSpeed
		panelY += 35

		rl.DrawText("Noise amplitude", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newAmp := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.0", "1.5",
			params.NoiseAmp, 0.0, 1.5,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.NoiseAmp), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		params.NoiseAmp = newAmp
		panelY += 35

		rl.DrawText("Noise frequency", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFreq := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.02", "0.4",
			params.Frequency, 0.02, 0.4,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Frequency), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		params.Frequency = newFreq
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Pause", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reseed") {
			params.Seed = uint32(rl.GetRandomValue(0, 99999))
			noise = opensimplex.New(int64(params.Seed))
			time = 0
			haveHit = false
			reseed()
		}
		panelY += 45

		rl.DrawText("Left-click the canvas to raycast", int32(panelX), int32(windowHeight-50), 12, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Seed: %d", params.Seed), int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
