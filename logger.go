package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

func newLogger(debugMode, jsonOutput bool, logFile io.Writer) *slog.Logger {
	w := io.Writer(os.Stdout)
	if logFile != nil {
		w = io.MultiWriter(os.Stdout, logFile)
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	replaceFunc := func(_ []string, a slog.Attr) slog.Attr {
		// show the source path relative to the working directory
		if a.Key == slog.SourceKey {
			source, ok := a.Value.Any().(*slog.Source)
			if !ok || source == nil {
				return a
			}
			if wd, err := os.Getwd(); err == nil {
				if rel, err := filepath.Rel(wd, source.File); err == nil {
					source.File = rel
				}
			}
		}
		return a
	}

	switch {
	case jsonOutput:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   debugMode,
			Level:       level,
			ReplaceAttr: replaceFunc,
		}))
	case logFile == nil && isatty.IsTerminal(os.Stdout.Fd()):
		return slog.New(log.NewWithOptions(w, log.Options{
			ReportCaller:    debugMode,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Level:           log.Level(level),
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource:   debugMode,
			Level:       level,
			ReplaceAttr: replaceFunc,
		}))
	}
}
