package blink

import (
	"errors"
	"fmt"
	"math"

	"github.com/davzula/blinkwatch/internal/landmark"
)

// MediaPipe face-mesh indices for the left eye. The ratio only needs the
// two eyelid points and the two corner points.
const (
	UpperLidIndex    = 159
	LowerLidIndex    = 23
	OuterCornerIndex = 130
	InnerCornerIndex = 243
)

// EyeRegionIndices is the 12-point left-eye contour used for overlay drawing.
var EyeRegionIndices = []int{22, 23, 24, 26, 110, 157, 158, 159, 160, 161, 130, 243}

// ratioWindow is the trailing-window length for smoothing (tuned constant).
const ratioWindow = 3

// ErrDegenerateEye signals coincident eye-corner landmarks. The corner
// points of a real face are always separated, so this is a precondition
// violation in the detector output, not a condition to smooth over.
var ErrDegenerateEye = errors.New("degenerate eye geometry: zero corner distance")

// Reducer turns a landmark frame into a smoothed eye-openness ratio.
// It owns the trailing sample window and nothing else.
type Reducer struct {
	window []int
}

func NewReducer() *Reducer {
	return &Reducer{window: make([]int, 0, ratioWindow)}
}

// Reduce computes the eye-aspect-ratio (vertical eyelid distance over
// horizontal corner distance, scaled to 0-100) for one frame, pushes it
// into the window evicting the oldest of 3 samples, and returns the
// window mean. Callers must not invoke Reduce for frames without a face;
// skipping the call leaves the window untouched.
func (r *Reducer) Reduce(f landmark.Frame) (float64, error) {
	upper, ok := f.At(UpperLidIndex)
	if !ok {
		return 0, fmt.Errorf("landmark frame missing index %d", UpperLidIndex)
	}
	lower, ok := f.At(LowerLidIndex)
	if !ok {
		return 0, fmt.Errorf("landmark frame missing index %d", LowerLidIndex)
	}
	outer, ok := f.At(OuterCornerIndex)
	if !ok {
		return 0, fmt.Errorf("landmark frame missing index %d", OuterCornerIndex)
	}
	inner, ok := f.At(InnerCornerIndex)
	if !ok {
		return 0, fmt.Errorf("landmark frame missing index %d", InnerCornerIndex)
	}

	vertical := dist(upper, lower)
	horizontal := dist(outer, inner)
	if horizontal == 0 {
		return 0, ErrDegenerateEye
	}

	ratio := int(math.Round(vertical / horizontal * 100))
	if len(r.window) == ratioWindow {
		copy(r.window, r.window[1:])
		r.window[ratioWindow-1] = ratio
	} else {
		r.window = append(r.window, ratio)
	}

	sum := 0
	for _, v := range r.window {
		sum += v
	}
	return float64(sum) / float64(len(r.window)), nil
}

// Window returns a copy of the current sample window, oldest first.
func (r *Reducer) Window() []int {
	out := make([]int, len(r.window))
	copy(out, r.window)
	return out
}

func dist(a, b landmark.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
