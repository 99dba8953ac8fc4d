package landmark

// MeshPoints is the number of landmarks in a full MediaPipe face mesh.
const MeshPoints = 468

// Point is a single face-mesh landmark in pixel coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame is the ordered landmark set detected in one video frame.
// A nil Frame means no face was visible.
type Frame []Point

// At returns the landmark at mesh index i.
func (f Frame) At(i int) (Point, bool) {
	if i < 0 || i >= len(f) {
		return Point{}, false
	}
	return f[i], true
}
