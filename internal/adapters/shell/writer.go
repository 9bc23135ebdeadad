package shell

import (
	"bytes"
	"strings"
	"sync"
)

// tailLimit bounds how much combined output a StageResult retains.
const tailLimit = 4096

// lineWriter buffers subprocess output and emits complete lines. Write may
// be called with partial lines; fragments are held until a newline arrives
// or Flush is called.
type lineWriter struct {
	emit func(line string)
	tail *tailBuffer
	buf  bytes.Buffer
}

func newLineWriter(emit func(line string), tail *tailBuffer) *lineWriter {
	return &lineWriter{emit: emit, tail: tail}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.tail != nil {
		w.tail.Write(p)
	}

	for {
		data := w.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return len(p), nil
		}
		line := strings.TrimSuffix(string(data[:idx]), "\r")
		w.buf.Next(idx + 1)
		w.emit(line)
	}
}

// Flush emits any buffered fragment as a final line.
func (w *lineWriter) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	w.emit(w.buf.String())
	w.buf.Reset()
}

// tailBuffer keeps the last limit bytes written to it. Stdout and stderr
// share one tail, so it is locked.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
