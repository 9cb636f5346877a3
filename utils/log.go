package utils

import (
	"io"
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"gradient-sdk/conf"
)

// InitLogger: log to stderr, and to a rotated file when a directory is configured
func InitLogger(config conf.LoggingConfig) error {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return err
	}
	var out io.Writer = os.Stderr
	if len(config.Dir) > 0 {
		rotation := &lumberjack.Logger{
			Filename:   path.Join(config.Dir, "gradient.log"),
			MaxSize:    50, // MiB
			MaxAge:     14, // Days
			MaxBackups: 5,  // Number
			LocalTime:  false,
			Compress:   false,
		}
		out = io.MultiWriter(os.Stderr, rotation)
	}
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	customFormatter.DisableQuote = true
	customFormatter.QuoteEmptyFields = true
	logrus.SetFormatter(customFormatter)
	logrus.SetLevel(level)
	logrus.SetOutput(out)
	return nil
}
