package evlog

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		Debugf("x %d", 1)
		Warningf("x %d", 2)
		WithFields(Fields{"fd": 3}).Errorf("x")
	})
}

func TestSetLoggerRoutesPackageFunctions(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	SetLogger(NewLoggerFrom(l))
	defer SetLogger(nil)

	Debugf("[poller.Add]: fd %d", 7)
	Warningf("[poller.Close]: %s", "boom")

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.DebugLevel, hook.AllEntries()[0].Level)
	assert.Equal(t, "[poller.Add]: fd 7", hook.AllEntries()[0].Message)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "[poller.Close]: boom", hook.LastEntry().Message)
}

func TestWithFields(t *testing.T) {
	l, hook := test.NewNullLogger()
	SetLogger(NewLoggerFrom(l))
	defer SetLogger(nil)

	WithFields(Fields{"fd": 9}).Errorf("deregister failed")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 9, hook.LastEntry().Data["fd"])
}

func TestTextLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, logrus.WarnLevel)

	l.Debugf("hidden")
	l.Warningf("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")
}
