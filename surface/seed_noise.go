package surface

import (
	"github.com/feltech/felt"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// SeedNoise seeds a distorted sphere (3D) or circle (2D) centred at
// centre: the radius at each sampled position's direction is a base
// radius of L/2 grid units perturbed by amplitude*noise, producing an
// organic narrow-band seed for test/demo surfaces without external mesh
// data, following systems/resource_field.go's fbmTiled noise-field idiom.
func (s *Surface) SeedNoise(centre felt.VecDi, amplitude float64, noise opensimplex.Noise) error {
	d := len(centre)
	lo := make(felt.VecDi, d)
	hi := make(felt.VecDi, d)
	for i := 0; i < d; i++ {
		lo[i] = centre[i] - s.numLayers - 1
		hi[i] = centre[i] + s.numLayers + 1
	}
	baseRadius := float64(s.numLayers) / 2
	return iterateBox(lo, hi, func(p felt.VecDi) error {
		if !s.isogrid.Inside(p) {
			return nil
		}
		rel := p.Sub(centre).ToFloat()
		r := rel.Norm()
		var n float64
		if d == 2 {
			n = noise.Eval2(rel[0], rel[1])
		} else {
			n = noise.Eval3(rel[0], rel[1], rel[2])
		}
		radius := baseRadius * (1 + amplitude*n)
		val := r - radius
		id := s.layerID(val)
		if !s.inBand(id) {
			return nil
		}
		_, err := s.isogrid.Track(val, p, s.layerIdx(id))
		return err
	})
}
