package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the shared application logger. Outside development the
// formatter is JSON so log aggregation can parse fields.
func NewLogger(level, environment string) *logrus.Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if strings.ToLower(environment) == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
