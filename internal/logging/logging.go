package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"ppm/internal/config"
)

// Init configures the global logrus logger from the log settings.
// Unknown levels fall back to info; format "json" selects the JSON formatter,
// anything else the text formatter.
func Init(cfg config.LogConfig, out io.Writer) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("logging.Init: invalid log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if out != nil {
		logrus.SetOutput(out)
	}
}
