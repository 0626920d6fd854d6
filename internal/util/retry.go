package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts
	InitialWait time.Duration // Initial wait duration (doubled each retry)
	MaxWait     time.Duration // Maximum wait duration between retries
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     2 * time.Second,
	}
}

// IsRetryableError checks if an error is worth retrying.
// Missing files and permission problems are never retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return false
	}

	var pathError *os.PathError
	if errors.As(err, &pathError) {
		err = pathError.Err
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN,
			syscall.EINTR,
			syscall.ETIMEDOUT,
			syscall.EIO:
			return true
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"timed out",
		"temporary failure",
		"resource temporarily unavailable",
		"interrupted system call",
		"i/o error",
	} {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// The operation always runs at least once, even when MaxAttempts is zero or
// negative. Returns the result of the function or the final error after all
// retries are exhausted.
func RetryWithBackoff[T any](cfg *RetryConfig, operation func() (T, error), operationName string) (T, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	maxAttempts := max(cfg.MaxAttempts, 1)
	waitDuration := cfg.InitialWait

	for attempt := 1; ; attempt++ {
		result, err := operation()
		if err == nil {
			if attempt > 1 {
				DebugLog("Retry: %s succeeded on attempt %d/%d",
					operationName, attempt, maxAttempts)
			}
			return result, nil
		}

		if !IsRetryableError(err) {
			return result, err
		}

		if attempt >= maxAttempts {
			WarnLog("Retry: %s failed after %d attempts: %v",
				operationName, maxAttempts, err)
			return result, fmt.Errorf("max retries exceeded (%d attempts): %w",
				maxAttempts, err)
		}

		DebugLog("Retry: %s failed (attempt %d/%d), retrying in %v: %v",
			operationName, attempt, maxAttempts, waitDuration, err)

		time.Sleep(waitDuration)

		waitDuration *= 2
		if waitDuration > cfg.MaxWait {
			waitDuration = cfg.MaxWait
		}
	}
}

// RetryableReadFile reads a whole file from fsys with retry logic
func RetryableReadFile(fsys afero.Fs, path string, cfg *RetryConfig) ([]byte, error) {
	return RetryWithBackoff(cfg, func() ([]byte, error) {
		return afero.ReadFile(fsys, path)
	}, fmt.Sprintf("read(%s)", path))
}
