// Package hostinfo samples host memory so pool warm-up cost shows up in logs.
package hostinfo

import (
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

const mb = 1024 * 1024

// Memory is a point-in-time view of host memory, in bytes.
type Memory struct {
	Total     uint64
	Available uint64
	Used      uint64
}

// SampleMemory reads the current host memory usage.
func SampleMemory() (Memory, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Memory{}, err
	}
	return Memory{Total: vm.Total, Available: vm.Available, Used: vm.Used}, nil
}

// UsedDeltaMB returns how many megabytes more are in use in m than in before.
// It is negative when memory was freed.
func (m Memory) UsedDeltaMB(before Memory) int64 {
	return (int64(m.Used) - int64(before.Used)) / mb
}

// MarshalZerologObject lets a sample be logged with Object.
func (m Memory) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("total_mb", m.Total/mb).
		Uint64("available_mb", m.Available/mb).
		Uint64("used_mb", m.Used/mb)
}
