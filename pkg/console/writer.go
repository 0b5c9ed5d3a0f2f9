package console

import (
	"bytes"
	"io"
	"sync"
)

// CRLFWriter translates "\n" into "\r\n". Raw mode disables output
// post-processing, so plain newlines would not return the cursor.
// Writes are serialized so status lines and log records don't interleave.
type CRLFWriter struct {
	mu  sync.Mutex
	w   io.Writer
	buf bytes.Buffer
}

// NewCRLFWriter wraps w.
func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf.Reset()
	for i, b := range p {
		if b == '\n' && (i == 0 || p[i-1] != '\r') {
			c.buf.WriteByte('\r')
		}
		c.buf.WriteByte(b)
	}
	if _, err := c.w.Write(c.buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
