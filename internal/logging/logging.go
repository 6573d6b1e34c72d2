package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process.
func Setup(environment string) zerolog.Logger {
	return SetupWithWriter(environment, os.Stdout)
}

// SetupWithWriter configures zerolog writing human-readable output to out.
func SetupWithWriter(environment string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stdout}).
		With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
