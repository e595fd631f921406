package log

import (
	"testing"

	"github.com/rs/zerolog"
)

// NewTestingLogger converts a testing.T into a logging interface.
func NewTestingLogger(t *testing.T) Logger {
	t.Helper()
	if testing.Verbose() {
		return NewTestingLoggerWithLevel(t, LogLevelDebug)
	}
	return NewTestingLoggerWithLevel(t, LogLevelInfo)
}

// NewTestingLoggerWithLevel creates a testing logger instance at a specific
// level that wraps the behavior of testing.T.Log().
func NewTestingLoggerWithLevel(t *testing.T, level string) Logger {
	t.Helper()
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		t.Fatalf("failed to parse log level (%s): %v", level, err)
	}

	return defaultLogger{
		Logger: zerolog.New(newSyncWriter(testingWriter{t})).Level(logLevel),
	}
}

type testingWriter struct {
	t *testing.T
}

func (w testingWriter) Write(bz []byte) (int, error) {
	w.t.Log(string(bz))
	return len(bz), nil
}
