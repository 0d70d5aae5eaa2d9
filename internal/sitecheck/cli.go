package sitecheck

import (
	"fmt"
	"io"
	"os"

	"github.com/h2hmarketing/site/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging initializes the global logger on w, teeing into logFile
// when one is given. The returned closer releases the file.
func SetupLogging(w io.Writer, logFile string) (io.Closer, error) {
	if logFile == "" {
		if err := logger.InitWithWriter(w); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nopCloser{}, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(w, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}
