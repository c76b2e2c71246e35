package clicmds

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging sends events to the console and a rotating file under the
// data directory so long monitoring runs don't fill the disk.
func setupLogging(dataPath string) {
	fileOut := &lumberjack.Logger{
		Filename:   dataPath + "/logs/extmon.log",
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(io.MultiWriter(console, fileOut)).With().Timestamp().Logger()
}
