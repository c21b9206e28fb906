package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// MaxFrameSize bounds a single newline-delimited frame
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned when a peer sends a frame over MaxFrameSize
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// FrameReader splits a stream into newline-delimited frames
type FrameReader struct {
	scanner *bufio.Scanner
}

// NewFrameReader wraps r
func NewFrameReader(r io.Reader) *FrameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxFrameSize)
	return &FrameReader{scanner: scanner}
}

// ReadFrame returns the next non-blank frame without its delimiter.
// It returns io.EOF once the stream is exhausted.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	for fr.scanner.Scan() {
		line := bytes.TrimSpace(fr.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return bytes.Clone(line), nil
	}
	if err := fr.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrFrameTooLarge
		}
		return nil, err
	}
	return nil, io.EOF
}

// WriteFrame writes an already-encoded frame in a single call
func WriteFrame(w io.Writer, frame []byte) error {
	_, err := w.Write(frame)
	return err
}

// WriteResponse encodes resp and writes it as one frame
func WriteResponse(w io.Writer, resp *Response) error {
	frame, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	return WriteFrame(w, frame)
}

// WriteRequest encodes req and writes it as one frame
func WriteRequest(w io.Writer, req *Request) error {
	frame, err := EncodeRequest(req)
	if err != nil {
		return err
	}
	return WriteFrame(w, frame)
}
