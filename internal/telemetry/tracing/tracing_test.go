package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoneycombSetup_Disabled(t *testing.T) {
	shutdown, err := HoneycombSetup(false, "test", nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestEndSpanWithErrCheck(t *testing.T) {
	_, span := GlobalTracer.Start(context.Background(), "test")
	assert.NotPanics(t, func() {
		EndSpanWithErrCheck(span, errors.New("boom"))
	})

	_, span = GlobalTracer.Start(context.Background(), "test-ok")
	assert.NotPanics(t, func() {
		EndSpanWithErrCheck(span, nil)
	})
}
