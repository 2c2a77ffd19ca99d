package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/pkg/logger"

	_ "modernc.org/sqlite"
)

// NewLogger creates a new slog.Logger writing to w with the specified level and format.
// Records pass through logger.ContextHandler so context values end up in the output.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	var logHandler slog.Handler
	if format == "text" {
		logHandler = slog.NewTextHandler(w, loggerOpts)
	} else {
		logHandler = slog.NewJSONHandler(w, loggerOpts)
	}
	return slog.New(logger.NewContextHandler(logHandler))
}

// NewStateDB opens the SQLite database that holds durable client state.
func NewStateDB(ctx context.Context, path string, connectTimeout time.Duration) (*sql.DB, error) {
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	// Ping the database to ensure the file is usable (fail early if not)
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}
	return db, nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
