package automation

import "github.com/viterin/vek"

type (
	// Point is a curve vertex in normalized surface coordinates: X runs from
	// 0 (first frame) to 1 (last frame) and Y from 0 (the parameter's
	// maximum) to 1 (its minimum), the same coordinate system the editor
	// receives pointer positions in.
	Point struct {
		X, Y float64
	}

	// Stats summarizes one parameter over a track.
	Stats struct {
		Min, Max, Mean float64
	}
)

// Column returns the values of key over all frames.
func (t Track) Column(key Key) []float64 {
	ret := make([]float64, len(t.Frames))
	for i, f := range t.Frames {
		ret[i] = f.Get(key)
	}
	return ret
}

// Points returns the curve of a parameter as normalized points, ready to be
// drawn by a renderer.
func (t Track) Points(d Descriptor) []Point {
	if len(t.Frames) == 0 {
		return nil
	}
	ys := t.Column(d.Key)
	if d.Max == d.Min {
		vek.MulNumber_Inplace(ys, 0)
	} else {
		vek.SubNumber_Inplace(ys, d.Min)
		vek.DivNumber_Inplace(ys, d.Min-d.Max)
		vek.AddNumber_Inplace(ys, 1)
	}
	ret := make([]Point, len(ys))
	den := float64(max(len(ys)-1, 1))
	for i, y := range ys {
		ret[i] = Point{X: float64(i) / den, Y: y}
	}
	return ret
}

// Stats returns the minimum, maximum and mean of key; ok is false for an
// empty track.
func (t Track) Stats(key Key) (s Stats, ok bool) {
	if len(t.Frames) == 0 {
		return Stats{}, false
	}
	col := t.Column(key)
	return Stats{Min: vek.Min(col), Max: vek.Max(col), Mean: vek.Mean(col)}, true
}
