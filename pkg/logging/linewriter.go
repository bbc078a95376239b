package logging

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// LineWriter is an io.Writer that emits one log event per line written to it.
// It is used as the stdout/stderr sink of child processes so their output
// lands in the run's log with the same structure as everything else.
type LineWriter struct {
	mu     sync.Mutex
	logger *zerolog.Logger
	level  zerolog.Level
	stream string
	buf    bytes.Buffer
}

// NewLineWriter returns a LineWriter logging at level with a "stream" field.
func NewLineWriter(logger *zerolog.Logger, level zerolog.Level, stream string) *LineWriter {
	if logger == nil {
		logger = Default()
	}
	return &LineWriter{logger: logger, level: level, stream: stream}
}

// Write implements io.Writer. Partial lines are held until completed or flushed.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// no newline yet; put the fragment back
			w.buf.Write(line)
			break
		}
		w.emit(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.Bytes())
		w.buf.Reset()
	}
}

func (w *LineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return
	}
	w.logger.WithLevel(w.level).Str("stream", w.stream).Msg(string(line))
}
