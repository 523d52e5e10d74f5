package llmclient

import (
	"encoding/json"
	"log/slog"
	"strings"

	"chatbox/src/chat"
)

const (
	// dataPrefix is the framing prefix of a meaningful stream line.
	dataPrefix = "data: "

	// doneSentinel marks the logical end of a stream.
	doneSentinel = "[DONE]"

	// flushThreshold is the buffer length beyond which a flush is
	// forced even without a newline. Flushing on every delta would
	// mean per-character rendering overhead downstream; batching too
	// much would feel laggy.
	flushThreshold = 80
)

// Decoder turns the raw bytes of a streaming chat-completion response
// into display-ready text chunks with stable flush boundaries.
//
// Bytes arrive in arbitrary splits; the decoder carries partial lines
// across Feed calls so the emitted chunks are identical no matter
// where the transport happened to cut the stream. Flush placement
// affects display cadence only: the concatenation of all emitted
// chunks always equals the full assistant text.
type Decoder struct {
	logger *slog.Logger

	remainder string // partial line carried between Feed calls
	buffer    string // text awaiting a flush boundary
	full      strings.Builder
	done      bool
}

// NewDecoder creates a decoder. A nil logger falls back to the
// default slog logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger.With("component", "stream_decoder")}
}

// Feed consumes one transport-level byte chunk and returns the text
// chunks that reached a flush boundary, in order.
func (d *Decoder) Feed(p []byte) []string {
	var out []string

	lines := strings.Split(d.remainder+string(p), "\n")
	d.remainder = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		out = d.processLine(line, out)
	}
	return out
}

// Finish signals transport-level end of input. Any half-received
// frame is decoded and residual buffered text is flushed.
func (d *Decoder) Finish() []string {
	var out []string
	if d.remainder != "" {
		out = d.processLine(d.remainder, out)
		d.remainder = ""
	}
	return d.flush(out)
}

// Response returns the full assistant text accumulated so far: the
// concatenation of every chunk emitted by Feed and Finish.
func (d *Decoder) Response() string {
	return d.full.String()
}

// Done reports whether the done sentinel has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

func (d *Decoder) processLine(line string, out []string) []string {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return out
	}
	// Frames after the sentinel are not expected, but must not crash
	// the decoder or leak into the committed response.
	if d.done {
		return out
	}

	payload := line[len(dataPrefix):]
	if payload == doneSentinel {
		d.done = true
		return d.flush(out)
	}

	var chunk chat.StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		// One bad frame must not abort an otherwise-good stream.
		d.logger.Debug("skipping malformed stream frame", "error", err)
		return out
	}

	if delta := chunk.DeltaContent(); delta != "" {
		d.buffer += delta
		if strings.HasSuffix(d.buffer, "\n") || len(d.buffer) > flushThreshold {
			out = d.flush(out)
		}
	}
	return out
}

func (d *Decoder) flush(out []string) []string {
	if d.buffer == "" {
		return out
	}
	d.full.WriteString(d.buffer)
	out = append(out, d.buffer)
	d.buffer = ""
	return out
}
