//go:build linux

package util

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Linux VFS magic numbers of network filesystems
var networkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0x517b:     "smb",
	0xfe534d42: "smb2",
	0x564c:     "ncp",
}

// mount type substrings that mark a network filesystem
var networkMountTypes = []string{"nfs", "cifs", "smb", "ncpfs", "fuse.sshfs", "fuse.rclone"}

func detectPlatformNetwork(path string, stat *syscall.Statfs_t) (*NetworkInfo, error) {
	info := &NetworkInfo{}

	if proto, ok := networkMagic[uint32(stat.Type)]; ok {
		info.IsNetwork = true
		info.Protocol = proto
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		// Magic number only
		return info, nil
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return info, nil
	}

	mountPoint, fsType := findMount(mounts, path)
	info.MountPath = mountPoint
	if isNetworkMountType(fsType) {
		info.IsNetwork = true
		info.Protocol = fsType
	}

	return info, nil
}

// parseMounts reads /proc/mounts lines into mount point -> filesystem type
func parseMounts(r io.Reader) (map[string]string, error) {
	mounts := make(map[string]string)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		// device mountpoint fstype options dump pass
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts[fields[1]] = strings.ToLower(fields[2])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

// findMount returns the longest mount point containing path
func findMount(mounts map[string]string, path string) (string, string) {
	best := ""
	for mountPoint := range mounts {
		if !withinMount(path, mountPoint) {
			continue
		}
		if len(mountPoint) > len(best) {
			best = mountPoint
		}
	}
	if best == "" {
		return "", ""
	}
	return best, mounts[best]
}

func withinMount(path, mountPoint string) bool {
	if mountPoint == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == mountPoint || strings.HasPrefix(path, mountPoint+string(filepath.Separator))
}

func isNetworkMountType(fsType string) bool {
	for _, t := range networkMountTypes {
		if strings.Contains(fsType, t) {
			return true
		}
	}
	return false
}
