package ui

import (
	"bytes"
	"io"
	"sync"
)

// LineWriter is an io.Writer that hands every complete line to a callback,
// without its trailing newline or carriage return.
type LineWriter struct {
	fn     func(line string)
	buffer []byte
	mu     sync.Mutex
}

// NewLineWriter returns a LineWriter calling fn once per line.
func NewLineWriter(fn func(line string)) *LineWriter {
	return &LineWriter{fn: fn}
}

// Write implements io.Writer
func (lw *LineWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buffer = append(lw.buffer, p...)
	for {
		idx := bytes.IndexByte(lw.buffer, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSuffix(lw.buffer[:idx], []byte{'\r'})
		lw.fn(string(line))
		lw.buffer = lw.buffer[idx+1:]
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (lw *LineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buffer) > 0 {
		line := string(lw.buffer)
		lw.buffer = lw.buffer[:0]
		lw.fn(line)
	}
}

// CRLFWriter rewrites bare "\n" line endings to "\r\n". A terminal in raw
// mode does not translate newlines, so without it output staircases.
type CRLFWriter struct {
	w    io.Writer
	mu   sync.Mutex
	last byte
}

// NewCRLFWriter wraps w.
func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

// Write implements io.Writer
func (cw *CRLFWriter) Write(p []byte) (n int, err error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	out := make([]byte, 0, len(p)+8)
	prev := cw.last
	for _, b := range p {
		if b == '\n' && prev != '\r' {
			out = append(out, '\r')
		}
		out = append(out, b)
		prev = b
	}
	if len(p) > 0 {
		cw.last = p[len(p)-1]
	}
	if _, err := cw.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// LogBuffer provides a simple ring buffer for logs
type LogBuffer struct {
	lines    []string
	maxLines int
	mu       sync.RWMutex
}

// NewLogBuffer creates a new log buffer
func NewLogBuffer(maxLines int) *LogBuffer {
	if maxLines <= 0 {
		maxLines = 1
	}
	return &LogBuffer{
		lines:    make([]string, 0, maxLines),
		maxLines: maxLines,
	}
}

// Append adds a line to the buffer
func (lb *LogBuffer) Append(line string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.lines) >= lb.maxLines {
		copy(lb.lines, lb.lines[1:])
		lb.lines = lb.lines[:len(lb.lines)-1]
	}
	lb.lines = append(lb.lines, line)
}

// GetAll returns all lines in the buffer
func (lb *LogBuffer) GetAll() []string {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]string, len(lb.lines))
	copy(result, lb.lines)
	return result
}

// Clear clears all lines from the buffer
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.lines = lb.lines[:0]
}
