package utils

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// SetLogLevel parses one of debug, info, warn, error or fatal and applies it to Log.
func SetLogLevel(level string) error {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		Log.SetLevel(logrus.FatalLevel)
	default:
		return fmt.Errorf("bad log level %q", level)
	}
	return nil
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RetryLogger routes retryablehttp's leveled log calls to Log.
// Request chatter is demoted one level so it only shows up with --loglevel debug.
type RetryLogger struct{}

func (RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	Log.WithFields(kvFields(keysAndValues)).Warn(msg)
}

func (RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	Log.WithFields(kvFields(keysAndValues)).Info(msg)
}

func (RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	Log.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	Log.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
