package fsm

import (
	"encoding/json"
	"fmt"
)

type Level uint32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return "undefined level"
	}
}

// FsmError is a leveled error emitted by machine callbacks; the level
// tells the caller whether the ceremony can continue.
type FsmError struct {
	level   Level
	message string
}

func (e *FsmError) Error() string {
	return e.level.String() + ": " + e.message
}

func (e *FsmError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Level   Level  `json:"level"`
		Message string `json:"message"`
	}{
		Level:   e.level,
		Message: e.message,
	})
}

func NewErr(level Level, message string) *FsmError {
	return &FsmError{
		level:   level,
		message: message,
	}
}

func NewErrf(level Level, format string, values ...interface{}) *FsmError {
	if len(values) == 0 {
		return NewErr(level, format)
	}
	return NewErr(level, fmt.Sprintf(format, values...))
}
