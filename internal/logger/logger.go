// Package logger is the process-wide structured logger. Lines go to a
// rotating file under the config directory and, for debug or long-running
// commands, to stderr as well.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/bloomlet/internal/constants"
)

// Logger is nil until Init runs; the package helpers are no-ops before that.
var Logger *log.Logger

var discard = log.New(io.Discard)

type Config struct {
	Debug     bool
	ConfigDir string
	// Console mirrors log lines to stderr without enabling debug output.
	// Long-running commands such as serve set it.
	Console bool
}

func (c Config) level() log.Level {
	switch {
	case c.Debug:
		return log.DebugLevel
	case c.Console:
		return log.InfoLevel
	}
	return log.WarnLevel
}

func (c Config) writer(file io.Writer) io.Writer {
	if c.Debug || c.Console {
		return io.MultiWriter(os.Stderr, file)
	}
	return file
}

// rotatingFile opens <dir>/logs/bloomlet.log with size and age based rotation.
func rotatingFile(dir string) (*lumberjack.Logger, error) {
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}, nil
}

func Init(cfg Config) error {
	file, err := rotatingFile(cfg.ConfigDir)
	if err != nil {
		return err
	}

	Logger = log.NewWithOptions(cfg.writer(file), log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           cfg.level(),
		Prefix:          constants.AppName,
	})
	return nil
}

func current() *log.Logger {
	if Logger == nil {
		return discard
	}
	return Logger
}

// With returns a child logger tagged "bloomlet/<component>".
func With(component string) *log.Logger {
	if Logger == nil {
		return discard
	}
	return Logger.WithPrefix(constants.AppName + "/" + component)
}

func Debug(msg string, keyvals ...interface{}) { current().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { current().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { current().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { current().Error(msg, keyvals...) }

// Fatal logs msg and exits with status 1 even when Init never ran.
func Fatal(msg string, keyvals ...interface{}) {
	current().Error(msg, keyvals...)
	os.Exit(1)
}
