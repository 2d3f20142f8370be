// Package logging configures the process-wide logger.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger at stderr, and additionally at a size-
// rotated log file when logFile is non-empty.
func Setup(logFile string) {
	log.SetFlags(log.LstdFlags)

	if logFile == "" {
		log.SetOutput(os.Stderr)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
