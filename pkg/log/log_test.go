package log

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerIsSingleton(t *testing.T) {
	first := NewLogger(Options{Level: "debug", NoColors: true})
	second := NewLogger(Options{Level: "error"})

	assert.Same(t, first, second)
	assert.Equal(t, logrus.DebugLevel, second.GetLevel())
	assert.True(t, first.ReportCaller)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.Equal(t, io.Discard, l.Out)
	assert.NotSame(t, Discard(), l)
}
