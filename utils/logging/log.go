// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled, structured logging interface every package in
// this module writes through instead of fmt.Println or the standard
// library's log package.
type Logger interface {
	Fatal(msg string, ctx ...zap.Field)
	Error(msg string, ctx ...zap.Field)
	Warn(msg string, ctx ...zap.Field)
	Info(msg string, ctx ...zap.Field)
	Trace(msg string, ctx ...zap.Field)
	Debug(msg string, ctx ...zap.Field)
	Verbo(msg string, ctx ...zap.Field)

	SetLogLevel(Level)
	SetDisplayLevel(Level)
	GetLogLevel() Level
	GetDisplayLevel() Level

	// Stop releases any resources (open files) held by the logger.
	Stop()
}

var _ Logger = (*log)(nil)

// toZapLevel maps this package's Level onto zapcore.Level. The two enums
// do not share numeric encodings, so this is an explicit table rather
// than a cast.
func toZapLevel(l Level) zapcore.Level {
	switch l {
	case Fatal:
		return zapcore.FatalLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	case Info:
		return zapcore.InfoLevel
	case Trace, Debug, Verbo:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

type log struct {
	level      zap.AtomicLevel
	fileCloser func() error
	internal   *zap.Logger
}

// NewLogger builds a Logger writing console-formatted lines to stderr, and
// additionally JSON lines to a rotation-free file under config.Directory
// unless config.DisableDisk is set. Mirrors the corpus's per-component logger construction (one
// Logger per named subsystem: "kernel", "election", "ledger", ...).
func NewLogger(config Config) (Logger, error) {
	level := zap.NewAtomicLevelAt(toZapLevel(config.DisplayLevel))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level),
	}

	var closeFile func() error
	if !config.DisableDisk && config.Directory != "" {
		if err := os.MkdirAll(config.Directory, 0o755); err != nil {
			return nil, err
		}
		name := config.LoggerName
		if name == "" {
			name = "quorumnode"
		}
		f, err := os.OpenFile(config.Directory+"/"+name+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		fileLevel := zap.NewAtomicLevelAt(toZapLevel(config.LogLevel))
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), fileLevel))
		closeFile = f.Close
	}

	internal := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	if config.MsgPrefix != "" {
		internal = internal.Named(config.MsgPrefix)
	}

	return &log{level: level, fileCloser: closeFile, internal: internal}, nil
}

// NewNopLogger returns a Logger that discards everything, for tests and
// collaborators that do not want to configure logging.
func NewNopLogger() Logger {
	return &log{level: zap.NewAtomicLevelAt(zapcore.FatalLevel + 1), internal: zap.NewNop()}
}

func (l *log) log(level Level, msg string, ctx ...zap.Field) {
	if ce := l.internal.Check(toZapLevel(level), msg); ce != nil {
		ce.Write(ctx...)
	}
}

func (l *log) Fatal(msg string, ctx ...zap.Field) { l.log(Fatal, msg, ctx...) }
func (l *log) Error(msg string, ctx ...zap.Field) { l.log(Error, msg, ctx...) }
func (l *log) Warn(msg string, ctx ...zap.Field)  { l.log(Warn, msg, ctx...) }
func (l *log) Info(msg string, ctx ...zap.Field)  { l.log(Info, msg, ctx...) }
func (l *log) Trace(msg string, ctx ...zap.Field) { l.log(Trace, msg, ctx...) }
func (l *log) Debug(msg string, ctx ...zap.Field) { l.log(Debug, msg, ctx...) }
func (l *log) Verbo(msg string, ctx ...zap.Field) { l.log(Verbo, msg, ctx...) }

func (l *log) SetLogLevel(level Level)     { l.level.SetLevel(toZapLevel(level)) }
func (l *log) SetDisplayLevel(level Level) { l.level.SetLevel(toZapLevel(level)) }
func (l *log) GetLogLevel() Level          { return fromZapLevel(l.level.Level()) }
func (l *log) GetDisplayLevel() Level      { return fromZapLevel(l.level.Level()) }

func fromZapLevel(zl zapcore.Level) Level {
	switch zl {
	case zapcore.FatalLevel:
		return Fatal
	case zapcore.ErrorLevel:
		return Error
	case zapcore.WarnLevel:
		return Warn
	case zapcore.InfoLevel:
		return Info
	case zapcore.DebugLevel:
		return Debug
	default:
		return Info
	}
}

func (l *log) Stop() {
	_ = l.internal.Sync()
	if l.fileCloser != nil {
		_ = l.fileCloser()
	}
}
