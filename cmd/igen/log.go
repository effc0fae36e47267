package main

import (
	"log/slog"
	"os"
)

func (rcc *rootCmdConfig) Logger() *slog.Logger {
	level := slog.LevelInfo
	if rcc.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
