package dump

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a dump document and validates it against the schema.
// The walk is strict: every map key must be one the schema knows, and
// any mismatch between the expected and actual node shape is fatal.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load dump: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("dump: empty document: %w", ErrShapeMismatch)
	}
	return parseFile(doc.Content[0])
}

// ParseFile reads and parses the dump at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseDir locates the single dump under root and parses it.
func ParseDir(root string) (*File, error) {
	path, err := Locate(root)
	if err != nil {
		return nil, err
	}
	return ParseFile(path)
}

func parseFile(n *yaml.Node) (*File, error) {
	if err := wantMap(n, "dump"); err != nil {
		return nil, err
	}
	f := &File{Settings: map[string]string{}}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "version":
			f.Version, err = scalarString(val, "dump", key)
		case "startTime":
			f.StartTime, err = scalarString(val, "dump", key)
		case "timeSinceStart":
			f.TimeSinceStart, err = scalarString(val, "dump", key)
		case "settings":
			err = parseSettings(f.Settings, val)
		case "SystemInfo":
			// accepted but not decoded
		case "Instance":
			err = parseInstance(&f.Instance, val)
		case "Device":
			// a repeated top-level key, one device per occurrence
			var dev Device
			if err = parseDevice(&dev, val); err == nil {
				f.Devices = append(f.Devices, dev)
			}
		default:
			err = unknownKey("dump", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// parseSettings checks key uniqueness itself: settings are free-form
// producer data, so a repeated key signals a producer bug.
func parseSettings(settings map[string]string, n *yaml.Node) error {
	if err := wantMap(n, "settings"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i].Value
		v, err := scalarString(n.Content[i+1], "settings", k)
		if err != nil {
			return err
		}
		if _, seen := settings[k]; seen {
			return fmt.Errorf("settings: key %q: %w", k, ErrDuplicateSetting)
		}
		settings[k] = v
	}
	return nil
}

func parseInstance(instance *Instance, n *yaml.Node) error {
	if err := wantMap(n, "Instance"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "handle":
			err = parseHandleNode(&instance.Handle, val, "Instance", key)
		case "applicationInfo":
			err = parseAppInfo(instance, val)
		case "extensions":
			instance.Extensions, err = parseStringSeq(val, "Instance", key)
		default:
			err = unknownKey("Instance", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseAppInfo(instance *Instance, n *yaml.Node) error {
	if err := wantMap(n, "applicationInfo"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "application":
			instance.Application, err = scalarString(val, "applicationInfo", key)
		case "applicationVersion":
			instance.ApplicationVersion, err = scalarUint32(val, "applicationInfo", key)
		case "engine":
			instance.Engine, err = scalarString(val, "applicationInfo", key)
		case "engineVersion":
			instance.EngineVersion, err = scalarUint32(val, "applicationInfo", key)
		case "apiVersion":
			// packed in the producer's own format, kept verbatim
			instance.APIVersion, err = scalarString(val, "applicationInfo", key)
		default:
			err = unknownKey("applicationInfo", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseSemaphoreInfo(info *SemaphoreInfo, n *yaml.Node) error {
	if err := wantMap(n, "SemaphoreInfo"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "handle":
			err = parseHandleNode(&info.Handle, val, "SemaphoreInfo", key)
		case "type":
			info.Type, err = scalarString(val, "SemaphoreInfo", key)
		case "value":
			info.Value, err = scalarUint64(val, "SemaphoreInfo", key)
		case "lastValue":
			info.LastValue, err = scalarUint64(val, "SemaphoreInfo", key)
		default:
			err = unknownKey("SemaphoreInfo", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseSemaphoreSeq(n *yaml.Node, key string) ([]SemaphoreInfo, error) {
	if err := wantSequence(n, "SubmitInfo", key); err != nil {
		return nil, err
	}
	infos := make([]SemaphoreInfo, 0, len(n.Content))
	for _, elem := range n.Content {
		var info SemaphoreInfo
		if err := parseSemaphoreInfo(&info, elem); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func parseSubmitInfo(info *SubmitInfo, n *yaml.Node) error {
	if err := wantMap(n, "SubmitInfo"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "id":
			info.ID, err = scalarUint64(val, "SubmitInfo", key)
		case "state":
			info.State, err = scalarString(val, "SubmitInfo", key)
		case "CommandBuffers":
			info.CommandBuffers, err = parseStringSeq(val, "SubmitInfo", key)
		case "SignalSemaphores":
			info.SignalSemaphores, err = parseSemaphoreSeq(val, key)
		case "WaitSemaphores":
			info.WaitSemaphores, err = parseSemaphoreSeq(val, key)
		default:
			err = unknownKey("SubmitInfo", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseSubmit(submit *Submit, n *yaml.Node) error {
	if err := wantMap(n, "Submit"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "id":
			submit.ID, err = scalarUint32(val, "Submit", key)
		case "SubmitInfos":
			err = wantSequence(val, "Submit", key)
			for _, elem := range val.Content {
				if err != nil {
					break
				}
				var info SubmitInfo
				if err = parseSubmitInfo(&info, elem); err == nil {
					submit.SubmitInfos = append(submit.SubmitInfos, info)
				}
			}
		default:
			err = unknownKey("Submit", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseQueue(queue *Queue, n *yaml.Node) error {
	if err := wantMap(n, "Queue"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "handle":
			err = parseHandleNode(&queue.Handle, val, "Queue", key)
		case "queueFamilyIndex":
			queue.QueueFamilyIndex, err = scalarUint32(val, "Queue", key)
		case "index":
			queue.Index, err = scalarUint32(val, "Queue", key)
		case "flags":
			// known but not decoded
		case "IncompleteSubmits":
			err = wantSequence(val, "Queue", key)
			for _, elem := range val.Content {
				if err != nil {
					break
				}
				var submit Submit
				if err = parseSubmit(&submit, elem); err == nil {
					queue.Submits = append(queue.Submits, submit)
				}
			}
		default:
			err = unknownKey("Queue", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseCommand(cmd *Command, n *yaml.Node) error {
	if err := wantMap(n, "Command"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "id":
			cmd.ID, err = scalarUint32(val, "Command", key)
		case "checkpointValue":
			cmd.CheckpointValue, err = scalarUint32(val, "Command", key)
		case "name":
			cmd.Name, err = scalarString(val, "Command", key)
		case "state":
			cmd.State, err = scalarString(val, "Command", key)
		case "message":
			cmd.Message, err = scalarString(val, "Command", key)
		case "parameters", "internalState":
			// per-command payloads are opaque to validation
		default:
			err = unknownKey("Command", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseCommandBuffer(cb *CommandBuffer, n *yaml.Node) error {
	if err := wantMap(n, "CommandBuffer"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "state":
			cb.State, err = scalarString(val, "CommandBuffer", key)
		case "handle":
			err = parseHandleNode(&cb.Handle, val, "CommandBuffer", key)
		case "commandPool":
			err = parseHandleNode(&cb.CommandPool, val, "CommandBuffer", key)
		case "queue":
			err = parseHandleNode(&cb.Queue, val, "CommandBuffer", key)
		case "fence":
			err = parseHandleNode(&cb.Fence, val, "CommandBuffer", key)
		case "submitInfoId":
			cb.SubmitInfoID, err = scalarUint64(val, "CommandBuffer", key)
		case "level":
			cb.Level, err = scalarString(val, "CommandBuffer", key)
		case "simultaneousUse":
			cb.SimultaneousUse, err = scalarBool(val, "CommandBuffer", key)
		case "beginValue":
			cb.BeginValue, err = scalarUint32(val, "CommandBuffer", key)
		case "endValue":
			cb.EndValue, err = scalarUint32(val, "CommandBuffer", key)
		case "topCheckpointValue":
			cb.TopCheckpointValue, err = scalarUint32(val, "CommandBuffer", key)
		case "bottomCheckpointValue":
			cb.BottomCheckpointValue, err = scalarUint32(val, "CommandBuffer", key)
		case "lastStartedCommand":
			cb.LastStartedCommand, err = scalarUint32(val, "CommandBuffer", key)
		case "lastCompletedCommand":
			cb.LastCompletedCommand, err = scalarUint32(val, "CommandBuffer", key)
		case "Commands":
			err = wantSequence(val, "CommandBuffer", key)
			for _, elem := range val.Content {
				if err != nil {
					break
				}
				var cmd Command
				if err = parseCommand(&cmd, elem); err == nil {
					cb.Commands = append(cb.Commands, cmd)
				}
			}
		default:
			err = unknownKey("CommandBuffer", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseCommandBufferSeq(n *yaml.Node, key string) ([]CommandBuffer, error) {
	if err := wantSequence(n, "Device", key); err != nil {
		return nil, err
	}
	cbs := make([]CommandBuffer, 0, len(n.Content))
	for _, elem := range n.Content {
		var cb CommandBuffer
		if err := parseCommandBuffer(&cb, elem); err != nil {
			return nil, err
		}
		cbs = append(cbs, cb)
	}
	return cbs, nil
}

func parseDevice(dev *Device, n *yaml.Node) error {
	if err := wantMap(n, "Device"); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "handle":
			err = parseHandleNode(&dev.Handle, val, "Device", key)
		case "deviceName":
			dev.DeviceName, err = scalarString(val, "Device", key)
		case "apiVersion":
			dev.APIVersion, err = scalarString(val, "Device", key)
		case "driverVersion":
			dev.DriverVersion, err = scalarString(val, "Device", key)
		case "vendorID":
			dev.VendorID, err = scalarUint32(val, "Device", key)
		case "deviceID":
			dev.DeviceID, err = scalarUint32(val, "Device", key)
		case "Queues":
			err = wantSequence(val, "Device", key)
			for _, elem := range val.Content {
				if err != nil {
					break
				}
				var queue Queue
				if err = parseQueue(&queue, elem); err == nil {
					dev.Queues = append(dev.Queues, queue)
				}
			}
		case "IncompleteCommandBuffers":
			dev.IncompleteCommandBuffers, err = parseCommandBufferSeq(val, key)
		case "AllCommandBuffers":
			dev.AllCommandBuffers, err = parseCommandBufferSeq(val, key)
		case "extensions":
			dev.Extensions, err = parseStringSeq(val, "Device", key)
		default:
			err = unknownKey("Device", key)
		}
		if err != nil {
			return err
		}
	}
	// The producer reports either the incomplete set (mid-crash) or
	// the full set (clean checkpoint), never both.
	if len(dev.IncompleteCommandBuffers) > 0 && len(dev.AllCommandBuffers) > 0 {
		return fmt.Errorf("Device %s: both IncompleteCommandBuffers and AllCommandBuffers populated: %w",
			dev.Handle, ErrInvariant)
	}
	return nil
}
