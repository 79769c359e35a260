package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger on stdout as the process default and
// returns its handler so it can be combined with other sinks later.
func Setup() slog.Handler {
	return SetupWriter(os.Stdout, slog.LevelInfo)
}

func SetupWriter(w io.Writer, level slog.Level) slog.Handler {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}
