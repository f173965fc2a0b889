package config

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logg    *logrus.Logger
	logOnce sync.Once
)

// GetLogger returns the shared JSON logger. Level comes from LOG_LEVEL
// (defaults to info).
func GetLogger() *logrus.Logger {
	logOnce.Do(func() {
		logg = logrus.New()
		logg.SetFormatter(&logrus.JSONFormatter{})
		logg.SetOutput(os.Stdout)

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		logg.SetLevel(level)
	})
	return logg
}
