package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// ParseLevel maps a config/flag value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %q (debug|info|warn|error)", s)
}

// NewLogger fans records out to the terminal, an optional JSON log file
// and, when asked, the systemd journal. The returned closer releases the
// log file.
func NewLogger(opts Options, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if opts.Quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	terminal := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	handlers := []slog.Handler{terminal}

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		closer = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if opts.Journal {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level:        level,
			ReplaceGroup: toJournalKey,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			record.Add("error", err)
			_ = terminal.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journal)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// toJournalKey upper-cases a key and replaces everything outside [A-Z0-9]
// with '_', as journald field names require.
func toJournalKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(s))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
