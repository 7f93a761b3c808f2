package pkg

import (
	"io"

	"go.uber.org/multierr"
)

var _ io.Writer = (*CombinedWriter)(nil)

// CombinedWriter writes to every underlying writer, keeps going when one of them fails
// and reports all failures together.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	for _, w := range cw.writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
