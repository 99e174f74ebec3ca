// Package processjoin fills in the host-side fields of a domain.ProcessSnapshot
// (name, user, state, RSS/VMS, thread count, command line) given a PID a
// device reader has already attributed to its hardware, grounded in
// original_source/src/device/process_utils.rs's get_linux_process_info. A
// device reader calls Lookup with the PID and GPU-specific fields it already
// knows (UsedGPUMemoryBytes, DeviceID, DeviceUUID) and gets back the fully
// populated snapshot.
package processjoin

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/all-smi-go/agent/daemon/domain"
)

// Lookup reads /proc/<pid>/stat and /proc/<pid>/status to fill in the
// host-observable fields of snap, which the caller has already populated
// with device-attributed fields (PID, DeviceID, DeviceUUID, UsesGPU,
// UsedGPUMemoryBytes). It returns false when the PID is gone or /proc is
// unavailable (non-Linux hosts) — never an error, matching
// domain.ProcessSnapshotter's never-fail contract.
func Lookup(snap domain.ProcessSnapshot) (domain.ProcessSnapshot, bool) {
	pid := snap.PID

	stat, ok := readStat(pid)
	if !ok {
		return snap, false
	}

	snap.State = domain.ProcessState(stat.state)
	snap.PPID = stat.ppid
	snap.RSSBytes = stat.rssPages * 4096
	snap.Threads = stat.threads

	if vms, uid, threads, ok := readStatus(pid); ok {
		snap.VMSBytes = vms
		snap.User = usernameFromUID(uid)
		if threads > 0 {
			snap.Threads = threads
		}
	}

	if cmd, ok := readCmdline(pid); ok {
		snap.Command = cmd
	}
	if snap.Name == "" {
		snap.Name = stat.comm
	}

	return snap, true
}

type statFields struct {
	comm     string
	state    string
	ppid     int
	rssPages uint64
	threads  int
}

// readStat parses /proc/<pid>/stat. The comm field is wrapped in
// parentheses and may itself contain spaces/parens, so it is located by its
// delimiters rather than naive whitespace splitting.
func readStat(pid int) (statFields, bool) {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return statFields{}, false
	}
	line := string(b)

	open := strings.IndexByte(line, '(')
	close := strings.LastIndexByte(line, ')')
	if open < 0 || close < 0 || close < open {
		return statFields{}, false
	}
	comm := line[open+1 : close]
	rest := strings.Fields(line[close+1:])
	if len(rest) < 21 {
		return statFields{}, false
	}

	ppid, _ := strconv.Atoi(rest[1])
	rss, _ := strconv.ParseUint(rest[21], 10, 64)

	return statFields{
		comm:     comm,
		state:    rest[0],
		ppid:     ppid,
		rssPages: rss,
	}, true
}

// readStatus parses /proc/<pid>/status for fields stat doesn't carry.
func readStatus(pid int) (vmsBytes uint64, uid uint32, threads int, ok bool) {
	f, err := os.Open("/proc/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return 0, 0, 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "VmSize:"):
			if kb, perr := parseKBField(line); perr {
				vmsBytes = kb * 1024
			}
		case strings.HasPrefix(line, "Uid:"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if v, perr := strconv.ParseUint(fields[1], 10, 32); perr == nil {
					uid = uint32(v)
				}
			}
		case strings.HasPrefix(line, "Threads:"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if v, perr := strconv.Atoi(fields[1]); perr == nil {
					threads = v
				}
			}
		}
	}
	return vmsBytes, uid, threads, true
}

func parseKBField(line string) (uint64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	return v, err == nil
}

func readCmdline(pid int) (string, bool) {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/cmdline")
	if err != nil {
		return "", false
	}
	cmd := strings.TrimSpace(strings.ReplaceAll(string(b), "\x00", " "))
	if cmd == "" {
		return "", false
	}
	return cmd, true
}

// usernameFromUID resolves a UID to a username via /etc/passwd, falling back
// to the numeric UID when no entry matches.
func usernameFromUID(uid uint32) string {
	f, err := os.Open("/etc/passwd")
	if err != nil {
		return strconv.FormatUint(uint64(uid), 10)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) < 3 {
			continue
		}
		if v, err := strconv.ParseUint(fields[2], 10, 32); err == nil && uint32(v) == uid {
			return fields[0]
		}
	}
	return strconv.FormatUint(uint64(uid), 10)
}
