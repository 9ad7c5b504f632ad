package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	InfoLog  *log.Logger
	WarnLog  *log.Logger
	ErrorLog *log.Logger
	logFile  *os.File
)

func init() {
	SetOutput(os.Stderr)
}

// SetOutput points every level at w.
func SetOutput(w io.Writer) {
	InfoLog = log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLog = log.New(w, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// ToFile sends all log output to filename only.
func ToFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", filename, err)
	}
	Close()
	logFile = f
	SetOutput(f)
	return nil
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Info(format string, v ...interface{}) {
	InfoLog.Output(2, fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	WarnLog.Output(2, fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	ErrorLog.Output(2, fmt.Sprintf(format, v...))
}
