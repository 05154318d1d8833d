package log

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/google/uuid"
)

type LogLevel int

const (
	DEBUG LogLevel = iota + 1
	INFO
	WARN
	ERROR
)

var level = INFO

func SetLevel(lvl LogLevel) {
	level = lvl
}

// F is a set of structured fields attached to a log line
type F map[string]string

func logln(ctx context.Context, lvl string, msg string, fields F) {
	fn, file, line, _ := runtime.Caller(2)
	fun := runtime.FuncForPC(fn).Name()
	if id := GetID(ctx); id != uuid.Nil {
		log.Printf("[%s] %s: %s %v [%s %s:%d]", id, lvl, msg, fields, fun, file, line)
	} else {
		log.Printf("%s: %s %v [%s %s:%d]", lvl, msg, fields, fun, file, line)
	}
}

func Debug(ctx context.Context, msg string, fields F) {
	if level <= DEBUG {
		logln(ctx, "DEBUG", msg, fields)
	}
}

func Info(ctx context.Context, msg string, fields F) {
	if level <= INFO {
		logln(ctx, "INFO", msg, fields)
	}
}

func Warn(ctx context.Context, msg string, fields F) {
	if level <= WARN {
		logln(ctx, "WARN", msg, fields)
	}
}

// Error logs at error severity and returns the logged error, so
// callers can `return log.Error(...)`
func Error(ctx context.Context, msg interface{}, fields F) error {
	err := interfaceToError(msg, fields)
	logln(ctx, "ERROR", err.Error(), fields)
	return err
}

func Fatal(msg string, fields F) {
	log.Printf("FATAL: %s %v", msg, fields)
	os.Exit(1)
}

func interfaceToError(msg interface{}, fields F) error {
	var err error
	switch v := msg.(type) {
	case string:
		err = errors.New(v)
	case error:
		err = v
	default:
		err = errors.New(fmt.Sprint(v))
	}

	for key, val := range fields {
		err = fmt.Errorf("%w: %s: %s", err, key, val)
	}

	return err
}
