package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	// Usable before InitLogger runs, e.g. in tests.
	Log = logrus.New()
	Log.Out = io.Discard
}

// InitLogger configures the shared logger. Unknown levels fall back to info.
func InitLogger(level string) {
	Log = logrus.New()

	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Package-level logrus calls in repositories and services share the setup.
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(lvl)
}
