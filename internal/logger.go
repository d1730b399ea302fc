package internal

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

type ZapLogger struct {
	s *zap.SugaredLogger
}

func NewZapLogger(s *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{s: s}
}

// NewLogger builds the production logger. When file is non-empty the JSON
// output additionally goes to a size-rotated file.
func NewLogger(level, file string) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	if file != "" {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
		})
		fileCore := zapcore.NewCore(enc, sink, lvl)
		base = base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	return NewZapLogger(base.Sugar()), nil
}

// NewNopLogger discards everything; used in tests.
func NewNopLogger() *ZapLogger {
	return NewZapLogger(zap.NewNop().Sugar())
}

func (l *ZapLogger) Info(args ...interface{}) { l.s.Info(args...) }

func (l *ZapLogger) Infof(format string, args ...interface{}) { l.s.Infof(format, args...) }

func (l *ZapLogger) Warn(args ...interface{}) { l.s.Warn(args...) }

func (l *ZapLogger) Warnf(format string, args ...interface{}) { l.s.Warnf(format, args...) }

func (l *ZapLogger) Error(args ...interface{}) { l.s.Error(args...) }

func (l *ZapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }

func (l *ZapLogger) Debug(args ...interface{}) { l.s.Debug(args...) }

func (l *ZapLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }

func (l *ZapLogger) Fatal(args ...interface{}) { l.s.Fatal(args...) }

func (l *ZapLogger) Fatalf(format string, args ...interface{}) { l.s.Fatalf(format, args...) }
