// Package logging provides the process-wide logger plus a per-job log sink
// used by the orchestrator so detailed tool output is written to the
// job's log file and never embedded in the user-facing response.
package logging

import (
	"io"
	"log"
	"os"
)

var (
	disabled = false
	logger   = log.New(os.Stdout, "", log.LstdFlags)
)

// Disable turns off all process-wide logging (used for quiet CLI output).
func Disable() { disabled = true }

// Enable turns logging back on.
func Enable() { disabled = false }

func Info(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

func Infof(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

func Error(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

func Errorf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

func Warn(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

func Warnf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// JobLogger writes to a job-scoped log file in addition to (optionally) the
// process-wide logger. One is created per job by the orchestrator and
// closed when the job reaches a terminal state.
type JobLogger struct {
	jobID string
	file  *os.File
	inner *log.Logger
}

// NewJobLogger opens (creating if needed) <outputDir>/job.log and returns a
// logger that prefixes every line with the job id.
func NewJobLogger(jobID, outputDir string) (*JobLogger, error) {
	f, err := os.OpenFile(outputDir+"/job.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JobLogger{
		jobID: jobID,
		file:  f,
		inner: log.New(io.MultiWriter(f), "["+jobID+"] ", log.LstdFlags),
	}, nil
}

func (l *JobLogger) Infof(format string, v ...any) {
	l.inner.Printf("INFO "+format, v...)
	if !disabled {
		logger.Printf("[%s] "+format, append([]any{l.jobID}, v...)...)
	}
}

func (l *JobLogger) Errorf(format string, v ...any) {
	l.inner.Printf("ERROR "+format, v...)
	if !disabled {
		logger.Printf("[%s] "+format, append([]any{l.jobID}, v...)...)
	}
}

// Close releases the underlying file handle.
func (l *JobLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
