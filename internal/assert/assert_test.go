package assert

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestThatPasses(t *testing.T) {
	assert.True(t, That(true, "never shown"))
}

func TestThatViolation(t *testing.T) {
	if Enabled {
		assert.Panics(t, func() { That(false, "need %d points", 3) })
		return
	}
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	orig := Logger
	Logger = logger
	t.Cleanup(func() { Logger = orig })

	assert.False(t, That(false, "need %d points", 3))
	if assert.Len(t, hook.Entries, 1) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "need 3 points", hook.LastEntry().Message)
	}
}
