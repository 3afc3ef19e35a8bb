package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetCliLoggerDefaults routes log output to stderr so stdout stays free for
// reports. With a log file, entries are also written there as JSON.
func SetCliLoggerDefaults(logFile string) {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z"

	var writer io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    false,
		TimeFormat: time.RFC3339,
	}
	if logFile != "" {
		writer = zerolog.MultiLevelWriter(writer, newLogFileWriter(logFile))
	}

	log.Logger = log.Logger.Output(writer).With().Logger()
}

func newLogFileWriter(logFile string) io.Writer {
	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

func SetCliLogLevel(c *cli.Command) {
	if c.Bool("very-verbose") {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	} else if c.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
