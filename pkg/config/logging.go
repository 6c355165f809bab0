package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// TextLogFormat writes human readable lines
	TextLogFormat = "text"
	// JSONLogFormat writes one JSON object per line
	JSONLogFormat = "json"
)

// Logging configures the log level and formatter, if the formatter is nil,
// the default TextFormatter is used.
func Logging(level string, formatter logrus.Formatter) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("can not parse log-level: %w", err)
	}

	if formatter == nil {
		formatter = textFormatter(false)
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(formatter)

	return nil
}

// LogFormatter returns the formatter for the format name, an empty name is the text format.
// The SQL fields logged by the database wrapper are kept in the JSON output as they are.
func LogFormatter(format string, disableColors bool) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", TextLogFormat:
		return textFormatter(disableColors), nil
	case JSONLogFormat:
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "query",
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func textFormatter(disableColors bool) logrus.Formatter {
	return &logrus.TextFormatter{
		DisableColors:          disableColors,
		FullTimestamp:          true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	}
}
