package testing

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	ltest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/contiamo/typednull/pkg/config"
)

// SetupLoggingBuffer creates an empty buffer and sets it as the global Logrus output at
// debug level with the given format (see config.LogFormatter). Returns the created buffer
// so you can check what was logged, the logger is restored when the test ends.
func SetupLoggingBuffer(t *testing.T, format string) *bytes.Buffer {
	buf := bytes.NewBuffer(nil)
	std := logrus.StandardLogger()
	prevFormatter, prevOut, prevLevel := std.Formatter, std.Out, std.Level
	t.Cleanup(func() {
		logrus.SetFormatter(prevFormatter)
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})

	formatter, err := config.LogFormatter(format, true)
	require.NoError(t, err)
	require.NoError(t, config.Logging(logrus.DebugLevel.String(), formatter))
	logrus.SetOutput(buf)

	return buf
}

// DiscardLogging sets the global Logrus output to io.Discard
func DiscardLogging() (restore func()) {
	std := logrus.StandardLogger()
	prevOut, prevLevel := std.Out, std.Level
	restore = func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	}

	logrus.SetOutput(io.Discard)
	logrus.SetLevel(logrus.FatalLevel)
	return restore
}

// CaptureLogs installs a hook on the global logger that records every entry at debug level
// and above, nothing is written to the output. The logger is restored when the test ends.
func CaptureLogs(t *testing.T) *ltest.Hook {
	std := logrus.StandardLogger()
	prevOut, prevLevel, prevHooks := std.Out, std.Level, std.Hooks
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
		std.ReplaceHooks(prevHooks)
	})

	hook := new(ltest.Hook)
	std.ReplaceHooks(make(logrus.LevelHooks))
	std.AddHook(hook)
	logrus.SetOutput(io.Discard)
	logrus.SetLevel(logrus.DebugLevel)
	return hook
}
