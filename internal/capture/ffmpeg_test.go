package capture

import (
	"bufio"
	"bytes"
	"testing"
)

func TestSplitJpeg(t *testing.T) {
	// Construct a stream containing: [Garbage] [JPEG] [Garbage]
	// SOI (Start of Image): FF D8
	// EOI (End of Image):   FF D9

	jpegData := []byte{0xFF, 0xD8, 0x01, 0x02, 0x03, 0xFF, 0xD9}

	streamData := []byte{0x00, 0x00} // Garbage at start
	streamData = append(streamData, jpegData...)
	streamData = append(streamData, []byte{0x00, 0x00}...) // Garbage at end

	scanner := bufio.NewScanner(bytes.NewReader(streamData))
	scanner.Split(SplitJpeg)

	// Scan() should skip the leading garbage and find the JPEG
	if !scanner.Scan() {
		t.Fatal("Expected to find a token, got EOF")
	}
	if !bytes.Equal(scanner.Bytes(), jpegData) {
		t.Errorf("Expected %X, got %X", jpegData, scanner.Bytes())
	}

	// Scan() again should return false (EOF) because the trailing garbage is not a JPEG
	if scanner.Scan() {
		t.Error("Expected only one token, found more")
	}
}

func TestSplitJpegMultipleFrames(t *testing.T) {
	frameA := []byte{0xFF, 0xD8, 0xAA, 0xFF, 0xD9}
	frameB := []byte{0xFF, 0xD8, 0xBB, 0xBB, 0xFF, 0xD9}

	stream := append(append([]byte{}, frameA...), frameB...)
	scanner := bufio.NewScanner(bytes.NewReader(stream))
	scanner.Split(SplitJpeg)

	if !scanner.Scan() || !bytes.Equal(scanner.Bytes(), frameA) {
		t.Fatalf("First frame wrong: %X", scanner.Bytes())
	}
	if !scanner.Scan() || !bytes.Equal(scanner.Bytes(), frameB) {
		t.Fatalf("Second frame wrong: %X", scanner.Bytes())
	}
	if scanner.Scan() {
		t.Error("Expected exactly two frames")
	}
}
