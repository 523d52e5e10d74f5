package llmclient

import (
	"errors"
	"io"
	"sync"
	"time"
)

// Stream reads a streaming chat-completion response. Recv yields
// flush-ready text chunks until io.EOF; Response then returns the
// full assistant text. Not safe for concurrent Recv calls.
type Stream struct {
	body    io.ReadCloser
	decoder *Decoder
	buf     []byte

	pending  []string
	finished bool

	watchdog *idleWatchdog

	closeOnce sync.Once
}

func newStream(body io.ReadCloser, decoder *Decoder, idleTimeout time.Duration) *Stream {
	s := &Stream{
		body:    body,
		decoder: decoder,
		buf:     make([]byte, 4096),
	}
	if idleTimeout > 0 {
		s.watchdog = newIdleWatchdog(body, idleTimeout)
	}
	return s
}

// Recv returns the next text chunk. io.EOF signals a clean end of
// stream; any other error is a transport failure.
func (s *Stream) Recv() (string, error) {
	for len(s.pending) == 0 {
		if s.finished {
			return "", io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.watchdog.reset()
			s.pending = append(s.pending, s.decoder.Feed(s.buf[:n])...)
		}
		if err != nil {
			s.finished = true
			if errors.Is(err, io.EOF) {
				s.pending = append(s.pending, s.decoder.Finish()...)
				continue
			}
			if s.watchdog.fired() {
				return "", ErrIdleTimeout
			}
			return "", err
		}
	}

	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk, nil
}

// Response returns the accumulated assistant text. Meaningful once
// Recv has returned io.EOF; earlier calls see a prefix.
func (s *Stream) Response() string {
	return s.decoder.Response()
}

// Done reports whether the stream saw the done sentinel before the
// transport ended.
func (s *Stream) Done() bool {
	return s.decoder.Done()
}

// Close releases the underlying connection. Safe to call more than
// once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.watchdog.stop()
		err = s.body.Close()
	})
	return err
}

// idleWatchdog closes the response body when no bytes arrive for the
// configured duration, unblocking a Read hung on a dead upstream. The
// original imposed no timeout at all; a hung connection hung the
// exchange forever.
type idleWatchdog struct {
	interval time.Duration
	timer    *time.Timer

	mu        sync.Mutex
	triggered bool
}

func newIdleWatchdog(body io.Closer, d time.Duration) *idleWatchdog {
	w := &idleWatchdog{interval: d}
	w.timer = time.AfterFunc(d, func() {
		w.mu.Lock()
		w.triggered = true
		w.mu.Unlock()
		body.Close()
	})
	return w
}

// The watchdog methods are nil-safe so the stream can consult an
// absent watchdog without branching.

func (w *idleWatchdog) reset() {
	if w == nil {
		return
	}
	w.timer.Reset(w.interval)
}

func (w *idleWatchdog) stop() {
	if w == nil {
		return
	}
	w.timer.Stop()
}

func (w *idleWatchdog) fired() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.triggered
}
