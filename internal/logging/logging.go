package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging returns the JSON logger used by every component. An unknown level
// falls back to info.
func SetupLogging(level string) *logrus.Logger {
	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logger.WithError(err).Warn("Logging.SetupLogging.invalidLevel")
		} else {
			logger.SetLevel(parsed)
		}
	}

	return &logger
}
