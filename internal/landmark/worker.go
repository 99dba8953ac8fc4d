package landmark

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davzula/blinkwatch/internal/utils"
)

// errorResult captures the error object returned by the Python side on failure.
type errorResult struct {
	Error string `json:"error"`
}

// MeshWorker manages the Python face-mesh process. Frames go in over
// stdin, landmark sets come back over a dedicated FD-3 data pipe so the
// payload never mixes with whatever the Python runtime prints.
type MeshWorker struct {
	ID       int
	Cmd      *utils.SafeCommand
	Stdin    io.WriteCloser
	DataPipe io.ReadCloser
}

// NewMeshWorker spawns the face-mesh script and wires up its pipes.
func NewMeshWorker(id int) (*MeshWorker, error) {
	py := utils.NewSafeCommand("python3", "-u", "python/facemesh.py")

	// Side-channel pipe (FD 3) for clean data transfer
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	py.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := py.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := py.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}

	// Close the write-end in the parent so only the child holds it
	w.Close()

	return &MeshWorker{
		ID:       id,
		Cmd:      py,
		Stdin:    stdin,
		DataPipe: r,
	}, nil
}

// ProcessFrame sends one JPEG frame to the worker and returns the
// detected landmark frame. A nil Frame with a nil error means no face
// was visible, a valid "no update" outcome, not a failure.
func (w *MeshWorker) ProcessFrame(jpeg []byte) (Frame, error) {
	resp, err := w.communicate(jpeg)
	if err != nil {
		return nil, err
	}

	var frame Frame
	if err := json.Unmarshal(resp, &frame); err != nil {
		// Check if it's a Python error object (e.g. {"error": "..."})
		var pyErr errorResult
		if json.Unmarshal(resp, &pyErr) == nil && pyErr.Error != "" {
			return nil, fmt.Errorf("worker %d: %s", w.ID, pyErr.Error)
		}
		return nil, fmt.Errorf("worker %d returned malformed JSON: %w", w.ID, err)
	}

	if len(frame) == 0 {
		return nil, nil
	}
	return frame, nil
}

// communicate runs the [Length][Data] exchange over the worker pipes.
func (w *MeshWorker) communicate(data []byte) ([]byte, error) {
	if err := binary.Write(w.Stdin, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	if _, err := w.Stdin.Write(data); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(w.DataPipe, header); err != nil {
		return nil, err // This is where a worker crash surfaces
	}

	respLen := binary.BigEndian.Uint32(header)
	respBody := make([]byte, respLen)
	_, err := io.ReadFull(w.DataPipe, respBody)
	return respBody, err
}

// Close tears down the pipes and reaps the process.
func (w *MeshWorker) Close() {
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd != nil {
		w.Cmd.Wait()
	}
}
