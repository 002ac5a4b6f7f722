package handlers

import (
	"context"
	"log/slog"
	"os"
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var logWriter = os.Stderr

var loggerType = reflect.TypeOf((*slog.Logger)(nil))

// loggerLevels is probed in ascending order to find the lowest level the
// logger's handler reports as enabled, since *slog.Logger exposes no
// direct level accessor — only Handler().Enabled(ctx, level).
var loggerLevels = []struct {
	name  string
	level slog.Level
}{
	{"DEBUG", slog.LevelDebug},
	{"INFO", slog.LevelInfo},
	{"WARN", slog.LevelWarn},
	{"ERROR", slog.LevelError},
}

// LoggerHandler is the tier-3 handler for *slog.Logger, snapshotting the
// level and format internal/logger.Config uses, rather than any
// handler-internal state slog doesn't expose. A *slog.Logger has no name,
// so no name is recorded. Registry.TierSpecial.
type LoggerHandler struct{}

func (LoggerHandler) Name() string { return "logger" }

func (LoggerHandler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.Logger" }

func (LoggerHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == loggerType && !v.IsNil()
}

func (LoggerHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "suitkaise.Logger" }

func (LoggerHandler) Extract(v reflect.Value) (registry.State, error) {
	logger, _ := v.Interface().(*slog.Logger)
	if logger == nil {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "logger handler received a nil *slog.Logger")
	}

	level := "INFO"
	for _, l := range loggerLevels {
		if logger.Enabled(context.Background(), l.level) {
			level = l.name
			break
		}
	}

	format := "text"
	switch logger.Handler().(type) {
	case *slog.JSONHandler:
		format = "json"
	}

	state := registry.NewRecordState(2)
	state.Set("level", level)
	state.Set("format", format)
	return state, nil
}

func (LoggerHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &loggerReconnector{}, nil
}

func (LoggerHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*loggerReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "logger handler cannot populate a shell of this type")
	}
	if level, ok := resolved.Fields["level"].(string); ok {
		r.level = level
	}
	if format, ok := resolved.Fields["format"].(string); ok {
		r.format = format
	}
	return nil
}

// loggerReconnector rebuilds a standalone *slog.Logger writing to stderr
// at the snapshotted level/format. It never touches the package-level
// internal/logger singleton, since reconnecting a handle the caller held
// shouldn't silently reconfigure the whole process's logging.
type loggerReconnector struct {
	level  string
	format string
}

func (r *loggerReconnector) ReconnectTypeKey() string { return "suitkaise.Logger" }

func (r *loggerReconnector) Reconnect(auth any) (any, error) {
	var lvl slog.Level
	switch r.level {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if r.format == "json" {
		h = slog.NewJSONHandler(logWriter, opts)
	} else {
		h = slog.NewTextHandler(logWriter, opts)
	}
	return slog.New(h), nil
}
