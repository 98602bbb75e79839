package config

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func levelFilter(l string) level.Option {
	switch l {
	case "debug":
		return level.AllowDebug()
	case "info":
		return level.AllowInfo()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	case "none":
		return level.AllowNone()
	default:
		return level.AllowAll()
	}
}

// NewLogger returns a logfmt logger writing to writer, filtered by the
// configured log level.
func (config Config) NewLogger(writer io.Writer) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(writer))
	logger = level.NewFilter(logger, levelFilter(config.Log.Level))
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}
