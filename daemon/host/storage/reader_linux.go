//go:build linux

// Package storage implements domain.StorageReader: it enumerates mounted
// volumes, excludes pseudo/system/container-overlay filesystems, and
// reports space via statfs, per spec.md §4.3 "Storage".
package storage

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/all-smi-go/agent/daemon/domain"
)

// Reader implements domain.StorageReader on Linux by parsing /proc/mounts.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a Linux storage reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "storage-linux" }

// excludedFSTypes are pseudo filesystems that carry no meaningful capacity.
var excludedFSTypes = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true, "tmpfs": true,
	"cgroup": true, "cgroup2": true, "overlay": true, "squashfs": true, "mqueue": true,
	"debugfs": true, "tracefs": true, "configfs": true, "securityfs": true, "pstore": true,
	"bpf": true, "autofs": true, "binfmt_misc": true, "rpc_pipefs": true, "nsfs": true,
}

var excludedMountPrefixes = []string{
	"/proc", "/sys", "/dev", "/run", "/boot/efi",
	"/var/lib/docker", "/var/lib/containerd", "/var/lib/kubelet",
}

// SnapshotStorage reads /proc/mounts, applies the exclusion rules, and
// statfs's each remaining mount, sorted by mount point with sequential
// indices assigned.
func (r *Reader) SnapshotStorage(ctx context.Context) ([]domain.StorageSnapshot, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, domain.NewIO("storage-linux", "reading /proc/mounts", err)
	}
	defer f.Close()

	type mount struct {
		point, fstype string
	}
	var mounts []mount
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		point, fstype := fields[1], fields[2]
		if excludedFSTypes[fstype] || isExcludedPath(point) || seen[point] {
			continue
		}
		seen[point] = true
		mounts = append(mounts, mount{point: point, fstype: fstype})
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewIO("storage-linux", "scanning /proc/mounts", err)
	}

	sort.Slice(mounts, func(i, j int) bool { return mounts[i].point < mounts[j].point })

	snapshots := make([]domain.StorageSnapshot, 0, len(mounts))
	for i, m := range mounts {
		var stat syscall.Statfs_t
		if err := syscall.Statfs(m.point, &stat); err != nil {
			continue
		}
		total := uint64(stat.Blocks) * uint64(stat.Bsize)
		available := uint64(stat.Bavail) * uint64(stat.Bsize)
		snapshots = append(snapshots, domain.StorageSnapshot{
			HostID:         r.hostID,
			Hostname:       r.hostname,
			Instance:       r.instance,
			MountPoint:     m.point,
			TotalBytes:     total,
			AvailableBytes: available,
			Index:          i,
		})
	}

	return snapshots, nil
}

func isExcludedPath(point string) bool {
	for _, prefix := range excludedMountPrefixes {
		if point == prefix || strings.HasPrefix(point, prefix+"/") {
			return true
		}
	}
	return false
}
