package logger

import (
	"fmt"
	"log"
	"os"
	"time"

	"fyne.io/fyne/v2/data/binding"
)

const maxHistory = 100

// AppLogger feeds the GUI log list through a fyne data binding.
type AppLogger struct {
	dataBinding binding.StringList
}

// NewAppLogger creates a logger writing into the given string list binding
func NewAppLogger(data binding.StringList) *AppLogger {
	return &AppLogger{
		dataBinding: data,
	}
}

// Info logs an informational message
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.log("INFO", format, args...)
}

// Error logs an error message
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}

// Debug logs to stdout only (keeps the UI list readable)
func (l *AppLogger) Debug(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[DEBUG] [%s] %s\n", time.Now().Format("15:04:05"), msg)
}

func (l *AppLogger) log(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	formatted := fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), level, msg)

	l.dataBinding.Append(formatted)

	// Trim history so the bound list widget stays small
	list, _ := l.dataBinding.Get()
	if len(list) > maxHistory {
		l.dataBinding.Set(list[len(list)-maxHistory:])
	}
}

// Console is the headless counterpart of AppLogger, writing to stderr.
type Console struct {
	l       *log.Logger
	Verbose bool
}

// NewConsole creates a console logger. verbose enables Debug output.
func NewConsole(verbose bool) *Console {
	return &Console{
		l:       log.New(os.Stderr, "", log.LstdFlags),
		Verbose: verbose,
	}
}

func (c *Console) Info(format string, args ...interface{}) {
	c.l.Printf("[INFO] "+format, args...)
}

func (c *Console) Error(format string, args ...interface{}) {
	c.l.Printf("[ERROR] "+format, args...)
}

func (c *Console) Debug(format string, args ...interface{}) {
	if c.Verbose {
		c.l.Printf("[DEBUG] "+format, args...)
	}
}
