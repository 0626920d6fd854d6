package util

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// NetworkInfo describes whether a path lives on network-mounted storage
type NetworkInfo struct {
	IsNetwork bool   // Whether the filesystem is network-mounted
	Protocol  string // Protocol (smb, nfs, cifs, etc.) or empty if local
	MountPath string // Mount point of the filesystem
}

// DetectNetworkFilesystem checks if a path is on a network-mounted filesystem.
// A path that does not exist yet is checked through its nearest existing parent.
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		if _, err := os.Stat(absPath); err == nil {
			break
		}
		parent := filepath.Dir(absPath)
		if parent == absPath {
			break
		}
		absPath = parent
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(absPath, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	return detectPlatformNetwork(absPath, &stat)
}

// NetworkRetryConfig returns read retry settings for network storage,
// where transient failures are more common and slower to clear
func NetworkRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 5,
		InitialWait: 250 * time.Millisecond,
		MaxWait:     5 * time.Second,
	}
}

// RetryConfigForPath picks read retry settings for the filesystem holding path
func RetryConfigForPath(path string) *RetryConfig {
	info, err := DetectNetworkFilesystem(path)
	if err != nil {
		DebugLog("Failed to detect filesystem for %s: %v", path, err)
		return DefaultRetryConfig()
	}

	if info.IsNetwork {
		cfg := NetworkRetryConfig()
		InfoLog("Network filesystem detected: %s is on %s (%s), retrying reads up to %d times",
			path, info.Protocol, info.MountPath, cfg.MaxAttempts)
		return cfg
	}

	return DefaultRetryConfig()
}
