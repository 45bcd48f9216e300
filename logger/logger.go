// Package logger provides component loggers with a colored name prefix,
// written through glog.
package logger

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

const colorReset = "\033[0m"

var ErrEmptyName = errors.New("logger name is empty")

// Logger tags every line with its component name.
type Logger struct {
	prefix string
}

// New returns a logger for the named component. color is an ANSI escape
// sequence; an empty color leaves the prefix plain.
func New(name, color string) (*Logger, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	prefix := fmt.Sprintf("[%s]", name)
	if color != "" {
		prefix = color + prefix + colorReset
	}
	return &Logger{prefix: prefix}, nil
}

func (l *Logger) Info(msg string) {
	glog.InfoDepth(1, l.prefix+" "+msg)
}

func (l *Logger) Warning(msg string) {
	glog.WarningDepth(1, l.prefix+" "+msg)
}

func (l *Logger) Error(msg string) {
	glog.ErrorDepth(1, l.prefix+" "+msg)
}

// Prefix returns the tag written in front of every line.
func (l *Logger) Prefix() string {
	return l.prefix
}
