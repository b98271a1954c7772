package cbor

import (
	"bufio"
	"io"
)

// ByteSink is the streaming output counterpart to ByteSource: it accepts
// complete encoded items and flushes them downstream, used by Encoder's
// EncodeTo path (spec.md §9 "Streaming sinks").
type ByteSink interface {
	io.Writer
	Flush() error
}

type bufferedByteSink struct {
	w *bufio.Writer
}

// NewByteSink wraps w with a write buffer of the given size. A size of 0
// disables buffering.
func NewByteSink(w io.Writer, size int) ByteSink {
	if size <= 0 {
		return &bufferedByteSink{w: bufio.NewWriterSize(w, 1)}
	}
	return &bufferedByteSink{w: bufio.NewWriterSize(w, size)}
}

func (b *bufferedByteSink) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

func (b *bufferedByteSink) Flush() error {
	return b.w.Flush()
}
