package main

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"gopkg.in/natefinch/lumberjack.v2"
)

// defaultLogFile returns lcu-connector.log next to the binary, or "" when
// the executable path cannot be resolved.
func defaultLogFile() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "lcu-connector.log")
}

// newLogger builds the process logger. Stdout carries rendered output, so
// logs go to the rotating file and, with -debug, to stderr as well. A
// Windows binary started from Explorer has no console, so it logs to the
// file only.
func newLogger(logFile string, debug bool) log.Logger {
	var writers []io.Writer
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			Compress:   true,
		})
	}
	if debug && (runtime.GOOS != "windows" || logFile == "") {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		return log.NewNopLogger()
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(io.MultiWriter(writers...)))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	allow := level.AllowInfo()
	if debug {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}
