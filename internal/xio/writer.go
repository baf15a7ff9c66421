package xio

import (
	"io"
)

// WriteCloser adapts a plain io.Writer to io.WriteCloser for APIs that insist
// on closing their output. Close is forwarded when the writer supports it.
func WriteCloser(w io.Writer) io.WriteCloser {
	return &writeCloser{Writer: w}
}

type writeCloser struct {
	io.Writer
}

func (w *writeCloser) Close() error {
	if closer, ok := w.Writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
