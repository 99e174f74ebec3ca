//go:build darwin

package storage

import (
	"context"
	"sort"
	"strings"
	"syscall"

	"github.com/all-smi-go/agent/daemon/domain"
)

// Reader implements domain.StorageReader on macOS via syscall.Getfsstat.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a macOS storage reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "storage-darwin" }

var excludedMountPrefixes = []string{"/dev", "/System/Volumes/VM", "/private/var/vm"}

// SnapshotStorage enumerates mounted volumes via getfsstat(2).
func (r *Reader) SnapshotStorage(ctx context.Context) ([]domain.StorageSnapshot, error) {
	n, err := syscall.Getfsstat(nil, syscall.MNT_NOWAIT)
	if err != nil {
		return nil, domain.NewIO("storage-darwin", "getfsstat count", err)
	}
	buf := make([]syscall.Statfs_t, n)
	if _, err := syscall.Getfsstat(buf, syscall.MNT_NOWAIT); err != nil {
		return nil, domain.NewIO("storage-darwin", "getfsstat", err)
	}

	type mount struct {
		point string
		stat  syscall.Statfs_t
	}
	var mounts []mount
	for _, stat := range buf {
		point := bytesToString(stat.Mntonname[:])
		if isExcludedPath(point) {
			continue
		}
		mounts = append(mounts, mount{point: point, stat: stat})
	}
	sort.Slice(mounts, func(i, j int) bool { return mounts[i].point < mounts[j].point })

	snapshots := make([]domain.StorageSnapshot, 0, len(mounts))
	for i, m := range mounts {
		total := uint64(m.stat.Blocks) * uint64(m.stat.Bsize)
		available := uint64(m.stat.Bavail) * uint64(m.stat.Bsize)
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

func bytesToString(b []int8) string {
	buf := make([]byte, 0, len(b))
	for _, c := range b {
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return string(buf)
}
