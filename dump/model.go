// Package dump reconstructs the runtime state recorded in a Crash
// Diagnostic Layer dump (cdl_dump.yaml) and validates it against the
// producer's schema. Any key the schema does not recognize is an error,
// not a warning: a dump that drifts from the expected format is the
// defect being surfaced.
package dump

import "fmt"

// File is the root of the reconstructed graph: one dump document.
type File struct {
	Version        string
	StartTime      string
	TimeSinceStart string
	Settings       map[string]string
	Instance       Instance
	Devices        []Device
}

// Handle is a native resource identifier as rendered in the dump:
// an address plus a human-readable name, e.g. "0x7f3a2c10 [VkInstance]".
type Handle struct {
	Value uint64
	Name  string
}

func (h Handle) String() string {
	return fmt.Sprintf("0x%x [%s]", h.Value, h.Name)
}

type Instance struct {
	Handle             Handle
	Application        string
	ApplicationVersion uint32
	Engine             string
	EngineVersion      uint32
	APIVersion         string // packed by the producer, stored verbatim
	Extensions         []string
}

type Device struct {
	Handle        Handle
	DeviceName    string
	APIVersion    string // packed by the producer, stored verbatim
	DriverVersion string
	VendorID      uint32
	DeviceID      uint32
	Extensions    []string
	Queues        []Queue

	// Exactly one of these listings may be populated: the producer
	// reports incomplete command buffers when the capture happened
	// mid-crash, or the full set at a clean checkpoint.
	IncompleteCommandBuffers []CommandBuffer
	AllCommandBuffers        []CommandBuffer
}

type Queue struct {
	Handle           Handle
	QueueFamilyIndex uint32
	Index            uint32
	Submits          []Submit
}

type Submit struct {
	ID          uint32
	SubmitInfos []SubmitInfo
}

type SubmitInfo struct {
	ID               uint64
	State            string
	CommandBuffers   []string
	SignalSemaphores []SemaphoreInfo
	WaitSemaphores   []SemaphoreInfo
}

type SemaphoreInfo struct {
	Handle    Handle
	Type      string
	Value     uint64
	LastValue uint64
}

type CommandBuffer struct {
	State           string
	Handle          Handle
	CommandPool     Handle
	Queue           Handle // back-reference by identity, not ownership
	Fence           Handle
	SubmitInfoID    uint64
	Level           string
	SimultaneousUse bool

	// Checkpoint progress markers bounding how far execution got
	// before the crash. Monotonicity is the producer's contract and
	// is left to consumers to judge.
	BeginValue            uint32
	EndValue              uint32
	TopCheckpointValue    uint32
	BottomCheckpointValue uint32
	LastStartedCommand    uint32
	LastCompletedCommand  uint32

	Commands []Command
}

type Command struct {
	ID              uint32
	CheckpointValue uint32
	Name            string
	State           string
	Message         string
}
