// Package logging builds the zap loggers used across the service.
// Production output is one JSON object per line with "ts", "level" and "msg" keys.
package logging

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	Level       string
	Development bool
	Location    *time.Location
	Writer      io.Writer
}

// New returns a zap logger honouring the given options.
// Unknown levels fall back to info; a nil writer means stdout.
func New(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if l, err := zapcore.ParseLevel(opts.Level); err == nil {
			level = l
		}
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}

	var encoder zapcore.Encoder
	if opts.Development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller())
}

// NewJSON returns a production JSON logger writing to w in the given location.
func NewJSON(w io.Writer, loc *time.Location) *zap.Logger {
	return New(Options{Writer: w, Location: loc})
}
