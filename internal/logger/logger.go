package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes leveled, printf-style messages to the console and,
// optionally, to a log file.
type Logger struct {
	Verbose bool
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	fileLog *os.File
	quiet   bool
}

// New creates a new Logger instance
func New(verbose bool) *Logger {
	return &Logger{
		Verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// Discard returns a logger that drops every message. Useful in tests.
func Discard() *Logger {
	return &Logger{out: io.Discard, errOut: io.Discard}
}

// SetOutput redirects console output (including errors) to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.errOut = w
}

// SetQuiet suppresses console output while a full-screen UI owns the
// terminal. File logging continues.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = quiet
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log("INFO", false, true, format, args...)
}

// Debug logs detailed messages only in verbose mode; the log file always
// receives them.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log("DEBUG", false, l.Verbose, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", false, true, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", true, true, format, args...)
}

func (l *Logger) log(level string, toErr, console bool, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.out
	if toErr {
		w = l.errOut
	}

	msg := fmt.Sprintf(format, args...)

	if console && !l.quiet && w != nil {
		if level == "INFO" {
			fmt.Fprintln(w, msg)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", level, msg)
		}
	}

	if l.fileLog != nil {
		fmt.Fprintf(l.fileLog, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	}
}
