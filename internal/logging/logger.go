// Package logging constructs the zap.Logger used across the scanner.
// Modeled on theRebelliousNerd-codenerd's internal/logging package (config
// driven, level-aware, with a structured/JSON mode) but built directly on
// go.uber.org/zap instead of a hand-rolled per-category file logger, since
// nothing here needs per-category log files.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures logger construction.
type Options struct {
	// JSON selects zap's production (JSON) encoder; otherwise a readable
	// console encoder is used, matching the teacher's "debug_mode" console
	// output during interactive use.
	JSON bool
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// Development enables caller/stacktrace annotations, mirroring
	// zap.NewDevelopment.
	Development bool
}

// New builds a *zap.Logger per opts. The pipeline, source resolver and
// watcher take a *zap.Logger by parameter; cmd/unityscan keeps the one it
// builds in a package-level variable and passes it down.
func New(opts Options) (*zap.Logger, error) {
	level := parseLevel(opts.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level)

	zapOpts := []zap.Option{zap.AddCaller()}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, zapOpts...), nil
}

// Noop returns a logger that discards everything, for tests that don't
// want to assert on log output.
func Noop() *zap.Logger {
	return zap.NewNop()
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
