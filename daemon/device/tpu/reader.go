//go:build linux

// Package tpu implements the Google TPU adapter by scanning sysfs, per
// spec.md §4.2's "Google TPU" rule: try /sys/class/accel first, then fall
// back to /sys/bus/pci/devices filtering by Google's PCI vendor ID (0x1ae0)
// and accelerator class (0x12), with a device-id allowlist when the class
// file is unreadable. Grounded in original_source's
// src/device/readers/tpu_sysfs.rs.
package tpu

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/all-smi-go/agent/daemon/domain"
)

const (
	accelPath    = "/sys/class/accel"
	pciPath      = "/sys/bus/pci/devices"
	googleVendor = "0x1ae0"
)

var knownDeviceIDs = map[string]bool{
	"0027": true, "0028": true, // v2/v3
	"0050": true, "0051": true, // v4
	"0060": true, "0061": true, "0062": true, // v5e/lite
	"006f": true,               // v5e/v6 VFIO
	"0070": true, "0071": true, // v5p
	"0080": true, "0081": true, // v6
}

// sysfsDevice is one discovered TPU chip.
type sysfsDevice struct {
	index        uint32
	deviceID     string
	temperatureC *float64
}

// Reader implements domain.DeviceReader for Google TPUs.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a TPU reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "tpu" }

func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	devices := scanSysfs()
	now := time.Now()
	snapshots := make([]domain.DeviceSnapshot, 0, len(devices))
	for _, d := range devices {
		snap := domain.DeviceSnapshot{
			UUID:     "tpu-" + strconv.FormatUint(uint64(d.index), 10),
			Name:     "Google TPU " + d.deviceID,
			Type:     domain.DeviceTypeNPU,
			HostID:   r.hostID,
			Hostname: r.hostname,
			Instance: r.instance,
			Time:     now,
			Detail: map[string]string{
				"device_id": d.deviceID,
				"index":     strconv.FormatUint(uint64(d.index), 10),
			},
		}
		if d.temperatureC != nil {
			snap.TemperatureC = *d.temperatureC
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// scanSysfs discovers TPU chips, preferring the standard accel driver and
// falling back to raw PCI enumeration for VFIO/passthrough setups.
func scanSysfs() []sysfsDevice {
	if devices := scanAccel(); len(devices) > 0 {
		return devices
	}
	return scanPCI()
}

func scanAccel() []sysfsDevice {
	entries, err := os.ReadDir(accelPath)
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(accelPath, e.Name()))
	}
	sort.Strings(paths)

	var devices []sysfsDevice
	for idx, path := range paths {
		deviceDir := filepath.Join(path, "device")
		vendor := readSysfsString(filepath.Join(deviceDir, "vendor"))
		if vendor != googleVendor {
			continue
		}
		deviceID := readSysfsString(filepath.Join(deviceDir, "device"))
		if deviceID == "" {
			deviceID = "unknown"
		}
		devices = append(devices, sysfsDevice{
			index:        uint32(idx),
			deviceID:     deviceID,
			temperatureC: readHwmonTemperature(deviceDir),
		})
	}
	return devices
}

func scanPCI() []sysfsDevice {
	entries, err := os.ReadDir(pciPath)
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(pciPath, e.Name()))
	}
	sort.Strings(paths)

	var devices []sysfsDevice
	var index uint32
	for _, path := range paths {
		vendor := strings.ToLower(readSysfsString(filepath.Join(path, "vendor")))
		if !strings.HasSuffix(vendor, "1ae0") {
			continue
		}

		if class := readSysfsString(filepath.Join(path, "class")); class != "" {
			classNorm := strings.ToLower(class)
			isAccelerator := strings.HasPrefix(strings.TrimPrefix(classNorm, "0x"), "12")
			if !isAccelerator {
				continue
			}
		} else {
			deviceID := readSysfsString(filepath.Join(path, "device"))
			if !isKnownTPUDeviceID(deviceID) {
				continue
			}
		}

		deviceID := readSysfsString(filepath.Join(path, "device"))
		if deviceID == "" {
			deviceID = "unknown"
		}
		devices = append(devices, sysfsDevice{
			index:        index,
			deviceID:     deviceID,
			temperatureC: readHwmonTemperature(path),
		})
		index++
	}
	return devices
}

func isKnownTPUDeviceID(deviceID string) bool {
	id := strings.ToLower(strings.TrimSpace(deviceID))
	id = strings.TrimPrefix(id, "0x")
	return knownDeviceIDs[id]
}

func readHwmonTemperature(deviceDir string) *float64 {
	hwmonDir := filepath.Join(deviceDir, "hwmon")
	entries, err := os.ReadDir(hwmonDir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		tempPath := filepath.Join(hwmonDir, e.Name(), "temp1_input")
		raw := readSysfsString(tempPath)
		if raw == "" {
			continue
		}
		milliC, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		c := float64(milliC) / 1000.0
		return &c
	}
	return nil
}

func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
