package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zjy-dev/cov2ai/internal/payload"
)

// Emitter defines the interface for writing the final payload output.
type Emitter interface {
	// Emit serializes and writes the payload list.
	Emit(payloads []payload.Payload) error
}

// JSONEmitter writes payloads as a single JSON array, optionally preceded
// by a prompt header, capped to a number of files and a byte budget.
type JSONEmitter struct {
	out      io.Writer
	maxFiles int // keep the first N payloads; <= 0 means no cap
	maxBytes int // truncate serialized JSON to this length; <= 0 means no cut
	header   string
	raw      bool
}

// NewJSONEmitter creates a JSONEmitter writing to out.
func NewJSONEmitter(out io.Writer, maxFiles, maxBytes int) *JSONEmitter {
	return &JSONEmitter{
		out:      out,
		maxFiles: maxFiles,
		maxBytes: maxBytes,
	}
}

// WithHeader sets the prompt header printed before the JSON. Raw mode
// suppresses it.
func (e *JSONEmitter) WithHeader(header string) *JSONEmitter {
	e.header = header
	return e
}

// SetRaw toggles raw mode: JSON only, no header.
func (e *JSONEmitter) SetRaw(raw bool) *JSONEmitter {
	e.raw = raw
	return e
}

// Emit writes the payloads. The byte cut is applied to the serialized
// JSON after encoding and may land mid-token; it is a preview cut, not
// a semantic limit on payload content.
func (e *JSONEmitter) Emit(payloads []payload.Payload) error {
	if e.maxFiles > 0 && len(payloads) > e.maxFiles {
		payloads = payloads[:e.maxFiles]
	}

	data, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("failed to marshal payloads: %w", err)
	}
	if e.maxBytes > 0 && len(data) > e.maxBytes {
		data = data[:e.maxBytes]
	}

	if !e.raw && e.header != "" {
		if _, err := fmt.Fprintln(e.out, e.header); err != nil {
			return fmt.Errorf("failed to write prompt header: %w", err)
		}
	}
	if _, err := e.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}
