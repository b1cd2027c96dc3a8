package felt

import (
	"fmt"
	"math"
)

// VecDi is a D-dimensional integer position or extent. D is always 2 or 3
// and is simply len(v); nothing in this package hard-codes a dimension.
type VecDi []int

// VecDf is a D-dimensional floating-point position or direction.
type VecDf []float64

// NewVecDi returns a zeroed D-dimensional integer vector.
func NewVecDi(d int) VecDi { return make(VecDi, d) }

// NewVecDf returns a zeroed D-dimensional float vector.
func NewVecDf(d int) VecDf { return make(VecDf, d) }

// Clone returns an independent copy of v.
func (v VecDi) Clone() VecDi {
	out := make(VecDi, len(v))
	copy(out, v)
	return out
}

// Clone returns an independent copy of v.
func (v VecDf) Clone() VecDf {
	out := make(VecDf, len(v))
	copy(out, v)
	return out
}

// Equal reports whether a and b have the same dimension and components.
func (v VecDi) Equal(o VecDi) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// Add returns v+o component-wise.
func (v VecDi) Add(o VecDi) VecDi {
	out := make(VecDi, len(v))
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out
}

// Sub returns v-o component-wise.
func (v VecDi) Sub(o VecDi) VecDi {
	out := make(VecDi, len(v))
	for i := range v {
		out[i] = v[i] - o[i]
	}
	return out
}

// AddAxis returns v with e added to axis, leaving v untouched.
func (v VecDi) AddAxis(axis, e int) VecDi {
	out := v.Clone()
	out[axis] += e
	return out
}

// L1Norm returns the city-block (L¹) norm of v, i.e. sum(|v_i|).
func (v VecDi) L1Norm() int {
	sum := 0
	for _, c := range v {
		if c < 0 {
			sum -= c
		} else {
			sum += c
		}
	}
	return sum
}

// L1Dist returns the city-block distance between v and o.
func (v VecDi) L1Dist(o VecDi) int {
	return v.Sub(o).L1Norm()
}

// DivFloor returns v divided by o component-wise, rounded toward negative
// infinity — the routing operation used to locate the partition containing
// a leaf position: child_idx = ⌊(p − offset) / child_size⌋.
func (v VecDi) DivFloor(o VecDi) VecDi {
	out := make(VecDi, len(v))
	for i := range v {
		out[i] = floorDiv(v[i], o[i])
	}
	return out
}

// Mul returns v*o component-wise.
func (v VecDi) Mul(o VecDi) VecDi {
	out := make(VecDi, len(v))
	for i := range v {
		out[i] = v[i] * o[i]
	}
	return out
}

// Product returns the product of all components (the cell count of a grid
// whose size is v).
func (v VecDi) Product() int {
	p := 1
	for _, c := range v {
		p *= c
	}
	return p
}

func (v VecDi) String() string {
	return fmt.Sprint([]int(v))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ToFloat converts v to a VecDf.
func (v VecDi) ToFloat() VecDf {
	out := make(VecDf, len(v))
	for i, c := range v {
		out[i] = float64(c)
	}
	return out
}

// Add returns v+o component-wise.
func (v VecDf) Add(o VecDf) VecDf {
	out := make(VecDf, len(v))
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out
}

// Sub returns v-o component-wise.
func (v VecDf) Sub(o VecDf) VecDf {
	out := make(VecDf, len(v))
	for i := range v {
		out[i] = v[i] - o[i]
	}
	return out
}

// Scale returns v scaled by s.
func (v VecDf) Scale(s float64) VecDf {
	out := make(VecDf, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Dot returns the dot product of v and o.
func (v VecDf) Dot(o VecDf) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum
}

// Norm returns the Euclidean (L²) norm of v.
func (v VecDf) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns v scaled to unit length, or a zero vector if v is
// (numerically) the zero vector.
func (v VecDf) Normalized() VecDf {
	n := v.Norm()
	if n <= Tiny {
		return make(VecDf, len(v))
	}
	return v.Scale(1 / n)
}

// Floor returns the component-wise floor of v as an integer vector.
func (v VecDf) Floor() VecDi {
	out := make(VecDi, len(v))
	for i, c := range v {
		out[i] = int(math.Floor(c))
	}
	return out
}

// IsNull reports whether v is the raycast-miss sentinel NullPos.
func (v VecDf) IsNull() bool {
	for _, c := range v {
		if c != math.MaxFloat64 {
			return false
		}
	}
	return len(v) > 0
}

// NullPos returns the D-dimensional raycast-miss sentinel: every component
// is the maximum representable float64.
func NullPos(d int) VecDf {
	out := make(VecDf, d)
	for i := range out {
		out[i] = math.MaxFloat64
	}
	return out
}

// NullIdx is the sentinel lookup index meaning "not a member of this list".
const NullIdx uint32 = math.MaxUint32

// Axes returns the D unit basis vectors e_0 .. e_{D-1} used to enumerate
// cardinal neighbours.
func Axes(d int) []VecDi {
	out := make([]VecDi, d)
	for i := range out {
		e := NewVecDi(d)
		e[i] = 1
		out[i] = e
	}
	return out
}
