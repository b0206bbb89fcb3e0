package logger

import (
	"fmt"
)

type Logger interface {
	Log(format string, args ...interface{})
}

type stdoutLogger struct {
	userName string
}

func NewLogger(username string) Logger {
	return &stdoutLogger{
		userName: username,
	}
}

func (l *stdoutLogger) Log(format string, args ...interface{}) {
	fmt.Printf("[%s] %s\n", l.userName, fmt.Sprintf(format, args...))
}
