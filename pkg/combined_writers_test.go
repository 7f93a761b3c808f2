package pkg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestCombinedWriter_Write(t *testing.T) {
	var a, b bytes.Buffer
	cw := NewCombinedWriter(&a, &b)

	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())
}

func TestCombinedWriter_WriteErrors(t *testing.T) {
	var a bytes.Buffer
	err1 := errors.New("disk full")
	err2 := errors.New("closed")
	cw := NewCombinedWriter(failingWriter{err1}, &a, failingWriter{err2})

	n, err := cw.Write([]byte("log line"))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "log line", a.String())
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, err1)
	assert.ErrorIs(t, err, err2)
}
