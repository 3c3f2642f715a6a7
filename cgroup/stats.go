//go:build linux

package cgroup

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// MemoryEvents mirrors the six counters in a cgroup's memory.events file.
type MemoryEvents struct {
	Low          uint64
	High         uint64
	Max          uint64
	OOM          uint64
	OOMKill      uint64
	OOMGroupKill uint64
}

// CPUUsageUsec reads cpu.stat's usage_usec field, a monotonically
// non-decreasing counter within an invocation. Best-effort: a vanished
// cgroup reads as zero rather than failing the caller.
func (c *Controller) CPUUsageUsec(h *Handle) uint64 {
	return parseKeyedField(readBestEffort(h.Path, "cpu.stat"), "usage_usec")
}

// CurrentMemoryBytes reads memory.current.
func (c *Controller) CurrentMemoryBytes(h *Handle) uint64 {
	return parseUint(strings.TrimSpace(readBestEffort(h.Path, "memory.current")))
}

// PeakMemoryBytes reads memory.peak.
func (c *Controller) PeakMemoryBytes(h *Handle) uint64 {
	return parseUint(strings.TrimSpace(readBestEffort(h.Path, "memory.peak")))
}

// MemoryEvents reads memory.events into its six-field record.
func (c *Controller) MemoryEvents(h *Handle) MemoryEvents {
	raw := readBestEffort(h.Path, "memory.events")
	return MemoryEvents{
		Low:          parseKeyedField(raw, "low"),
		High:         parseKeyedField(raw, "high"),
		Max:          parseKeyedField(raw, "max"),
		OOM:          parseKeyedField(raw, "oom"),
		OOMKill:      parseKeyedField(raw, "oom_kill"),
		OOMGroupKill: parseKeyedField(raw, "oom_group_kill"),
	}
}

// BroadcastSignal reads cgroup.procs into a bounded list and delivers sig
// to each PID in reverse order — children before parents, reducing the
// chance of signalling an already-reaped zombie slot.
func (c *Controller) BroadcastSignal(h *Handle, sig unix.Signal) {
	raw := readBestEffort(h.Path, "cgroup.procs")
	pids := parsePids(raw, int(c.limits.HardPidsCap)+1)
	for i := len(pids) - 1; i >= 0; i-- {
		_ = unix.Kill(pids[i], sig)
	}
}

func parsePids(raw string, limit int) []int {
	fields := strings.Fields(raw)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		pid, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		out = append(out, pid)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// parseKeyedField looks up "key value" lines as found in cpu.stat and
// memory.events.
func parseKeyedField(raw, key string) uint64 {
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != key {
			continue
		}
		return parseUint(fields[1])
	}
	return 0
}

func parseUint(s string) uint64 {
	if s == "max" || s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
