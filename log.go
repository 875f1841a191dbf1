package gmk

import (
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the bridge's diagnostic logger. make owns stdout, so
// diagnostics go to stderr only. The GMK_DEBUG environment variable
// selects the level by name; any other non-empty value means debug.
func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	if env := os.Getenv("GMK_DEBUG"); env != "" {
		if level, err := logrus.ParseLevel(env); err == nil {
			l.SetLevel(level)
		} else {
			l.SetLevel(logrus.DebugLevel)
		}
	}
	return l
}
