package blink

import (
	"errors"
	"math"
	"testing"

	"github.com/davzula/blinkwatch/internal/landmark"
)

// eyeFrame builds a full mesh frame whose four ratio landmarks produce
// the given vertical and horizontal distances.
func eyeFrame(vertical, horizontal int) landmark.Frame {
	f := make(landmark.Frame, landmark.MeshPoints)
	f[UpperLidIndex] = landmark.Point{X: 50, Y: 100}
	f[LowerLidIndex] = landmark.Point{X: 50, Y: 100 + vertical}
	f[OuterCornerIndex] = landmark.Point{X: 0, Y: 110}
	f[InnerCornerIndex] = landmark.Point{X: horizontal, Y: 110}
	return f
}

func TestReduceRatio(t *testing.T) {
	r := NewReducer()

	// vert 40, hor 100 -> ratio 40, window [40], mean 40
	got, err := r.Reduce(eyeFrame(40, 100))
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if got != 40 {
		t.Errorf("Expected mean 40, got %f", got)
	}
}

func TestReduceWindowEviction(t *testing.T) {
	r := NewReducer()

	// Inputs 50, 50, 20 -> mean (50+50+20)/3 = 40
	var mean float64
	var err error
	for _, v := range []int{50, 50, 20} {
		mean, err = r.Reduce(eyeFrame(v, 100))
		if err != nil {
			t.Fatalf("Reduce failed: %v", err)
		}
	}
	if mean != 40 {
		t.Errorf("Expected mean 40 for window [50,50,20], got %f", mean)
	}

	// A 4th input evicts the oldest 50: window [50,20,10], mean 26.67
	mean, _ = r.Reduce(eyeFrame(10, 100))
	want := (50.0 + 20.0 + 10.0) / 3.0
	if math.Abs(mean-want) > 1e-9 {
		t.Errorf("Expected mean %.2f for window [50,20,10], got %f", want, mean)
	}

	win := r.Window()
	if len(win) != 3 {
		t.Fatalf("Window length must stay at 3, got %d", len(win))
	}
	if win[0] != 50 || win[1] != 20 || win[2] != 10 {
		t.Errorf("Expected window [50 20 10], got %v", win)
	}
}

func TestReduceWindowNeverExceedsThree(t *testing.T) {
	r := NewReducer()
	for i := 0; i < 20; i++ {
		if _, err := r.Reduce(eyeFrame(40, 100)); err != nil {
			t.Fatalf("Reduce failed: %v", err)
		}
		if len(r.Window()) > 3 {
			t.Fatalf("Window grew past 3 elements after %d samples", i+1)
		}
	}
}

func TestReduceDegenerateGeometry(t *testing.T) {
	r := NewReducer()
	_, err := r.Reduce(eyeFrame(40, 0))
	if !errors.Is(err, ErrDegenerateEye) {
		t.Fatalf("Expected ErrDegenerateEye for zero corner distance, got %v", err)
	}
	// A failed reduction must not pollute the window
	if len(r.Window()) != 0 {
		t.Errorf("Window mutated on degenerate input: %v", r.Window())
	}
}

func TestReduceShortFrame(t *testing.T) {
	r := NewReducer()
	if _, err := r.Reduce(make(landmark.Frame, 10)); err == nil {
		t.Fatal("Expected an error for a frame missing the eye landmarks")
	}
}

func TestReduceRounding(t *testing.T) {
	r := NewReducer()
	// vert 33, hor 90 -> 36.66... -> rounds to 37
	mean, err := r.Reduce(eyeFrame(33, 90))
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if mean != 37 {
		t.Errorf("Expected rounded ratio 37, got %f", mean)
	}
}
