package runner

import (
	"bytes"
	"strings"
	"sync"

	"github.com/pyembed-labs/pyembed/internal/logsink"
)

// lineWriter splits whatever is written to it into lines and logs each
// complete line as soon as its newline arrives.
type lineWriter struct {
	mu     sync.Mutex
	sink   logsink.Sink
	level  logsink.Level
	stream string
	buf    bytes.Buffer
}

func newLineWriter(sink logsink.Sink, level logsink.Level, stream string) *lineWriter {
	return &lineWriter{sink: sink, level: level, stream: stream}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line; keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Flush logs a trailing line that had no newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	w.sink.Log(w.level, line, "stream", w.stream)
}
