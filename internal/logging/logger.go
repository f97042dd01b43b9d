package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide structured logger. It writes to stdout until Init
// points it somewhere else.
var Logger = logrus.New()

// Init configures level and output. An empty file keeps logs on stdout;
// otherwise they go to both stdout and a rotated file.
func Init(level, file string) {
	Logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	if file == "" {
		Logger.SetOutput(os.Stdout)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	Logger.WithField("file", file).Info("Logger initialized")
}
