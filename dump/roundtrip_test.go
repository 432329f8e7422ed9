package dump

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"
)

// renderDump writes a File back out in the producer's document shape.
// It exists only so tests can prove parse(render(f)) == f; the package
// itself never serializes.
func renderDump(f *File) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version: %q\n", f.Version)
	fmt.Fprintf(&b, "startTime: %q\n", f.StartTime)
	fmt.Fprintf(&b, "timeSinceStart: %q\n", f.TimeSinceStart)
	if len(f.Settings) > 0 {
		b.WriteString("settings:\n")
		keys := make([]string, 0, len(f.Settings))
		for k := range f.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %q\n", k, f.Settings[k])
		}
	}
	renderInstance(&b, &f.Instance)
	for i := range f.Devices {
		renderDevice(&b, &f.Devices[i])
	}
	return b.String()
}

func renderInstance(b *strings.Builder, in *Instance) {
	b.WriteString("Instance:\n")
	fmt.Fprintf(b, "  handle: %s\n", in.Handle)
	b.WriteString("  applicationInfo:\n")
	fmt.Fprintf(b, "    application: %q\n", in.Application)
	fmt.Fprintf(b, "    applicationVersion: %d\n", in.ApplicationVersion)
	fmt.Fprintf(b, "    engine: %q\n", in.Engine)
	fmt.Fprintf(b, "    engineVersion: %d\n", in.EngineVersion)
	fmt.Fprintf(b, "    apiVersion: %q\n", in.APIVersion)
	renderStringSeq(b, "  ", "extensions", in.Extensions)
}

func renderDevice(b *strings.Builder, dev *Device) {
	b.WriteString("Device:\n")
	fmt.Fprintf(b, "  handle: %s\n", dev.Handle)
	fmt.Fprintf(b, "  deviceName: %q\n", dev.DeviceName)
	fmt.Fprintf(b, "  apiVersion: %q\n", dev.APIVersion)
	fmt.Fprintf(b, "  driverVersion: %q\n", dev.DriverVersion)
	fmt.Fprintf(b, "  vendorID: %d\n", dev.VendorID)
	fmt.Fprintf(b, "  deviceID: %d\n", dev.DeviceID)
	renderStringSeq(b, "  ", "extensions", dev.Extensions)
	if len(dev.Queues) > 0 {
		b.WriteString("  Queues:\n")
		for i := range dev.Queues {
			renderQueue(b, &dev.Queues[i])
		}
	}
	renderCommandBuffers(b, "IncompleteCommandBuffers", dev.IncompleteCommandBuffers)
	renderCommandBuffers(b, "AllCommandBuffers", dev.AllCommandBuffers)
}

func renderQueue(b *strings.Builder, q *Queue) {
	fmt.Fprintf(b, "    - handle: %s\n", q.Handle)
	fmt.Fprintf(b, "      queueFamilyIndex: %d\n", q.QueueFamilyIndex)
	fmt.Fprintf(b, "      index: %d\n", q.Index)
	if len(q.Submits) > 0 {
		b.WriteString("      IncompleteSubmits:\n")
		for i := range q.Submits {
			renderSubmit(b, &q.Submits[i])
		}
	}
}

func renderSubmit(b *strings.Builder, s *Submit) {
	fmt.Fprintf(b, "        - id: %d\n", s.ID)
	if len(s.SubmitInfos) > 0 {
		b.WriteString("          SubmitInfos:\n")
		for i := range s.SubmitInfos {
			renderSubmitInfo(b, &s.SubmitInfos[i])
		}
	}
}

func renderSubmitInfo(b *strings.Builder, info *SubmitInfo) {
	fmt.Fprintf(b, "            - id: %d\n", info.ID)
	fmt.Fprintf(b, "              state: %q\n", info.State)
	renderStringSeq(b, "              ", "CommandBuffers", info.CommandBuffers)
	renderSemaphores(b, "WaitSemaphores", info.WaitSemaphores)
	renderSemaphores(b, "SignalSemaphores", info.SignalSemaphores)
}

func renderSemaphores(b *strings.Builder, key string, sems []SemaphoreInfo) {
	if len(sems) == 0 {
		return
	}
	fmt.Fprintf(b, "              %s:\n", key)
	for _, sem := range sems {
		fmt.Fprintf(b, "                - handle: %s\n", sem.Handle)
		fmt.Fprintf(b, "                  type: %q\n", sem.Type)
		fmt.Fprintf(b, "                  value: %d\n", sem.Value)
		fmt.Fprintf(b, "                  lastValue: %d\n", sem.LastValue)
	}
}

func renderCommandBuffers(b *strings.Builder, key string, cbs []CommandBuffer) {
	if len(cbs) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", key)
	for i := range cbs {
		cb := &cbs[i]
		fmt.Fprintf(b, "    - state: %q\n", cb.State)
		fmt.Fprintf(b, "      handle: %s\n", cb.Handle)
		fmt.Fprintf(b, "      commandPool: %s\n", cb.CommandPool)
		fmt.Fprintf(b, "      queue: %s\n", cb.Queue)
		fmt.Fprintf(b, "      fence: %s\n", cb.Fence)
		fmt.Fprintf(b, "      submitInfoId: %d\n", cb.SubmitInfoID)
		fmt.Fprintf(b, "      level: %q\n", cb.Level)
		fmt.Fprintf(b, "      simultaneousUse: %t\n", cb.SimultaneousUse)
		fmt.Fprintf(b, "      beginValue: %d\n", cb.BeginValue)
		fmt.Fprintf(b, "      endValue: %d\n", cb.EndValue)
		fmt.Fprintf(b, "      topCheckpointValue: %d\n", cb.TopCheckpointValue)
		fmt.Fprintf(b, "      bottomCheckpointValue: %d\n", cb.BottomCheckpointValue)
		fmt.Fprintf(b, "      lastStartedCommand: %d\n", cb.LastStartedCommand)
		fmt.Fprintf(b, "      lastCompletedCommand: %d\n", cb.LastCompletedCommand)
		if len(cb.Commands) > 0 {
			b.WriteString("      Commands:\n")
			for _, cmd := range cb.Commands {
				fmt.Fprintf(b, "        - id: %d\n", cmd.ID)
				fmt.Fprintf(b, "          checkpointValue: %d\n", cmd.CheckpointValue)
				fmt.Fprintf(b, "          name: %q\n", cmd.Name)
				fmt.Fprintf(b, "          state: %q\n", cmd.State)
				fmt.Fprintf(b, "          message: %q\n", cmd.Message)
			}
		}
	}
}

func renderStringSeq(b *strings.Builder, indent, key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s%s:\n", indent, key)
	for _, v := range values {
		fmt.Fprintf(b, "%s  - %q\n", indent, v)
	}
}

func TestRoundTrip(t *testing.T) {
	original := &File{
		Version:        "1.3",
		StartTime:      "2024-04-12T09:15:22Z",
		TimeSinceStart: "12.5s",
		Settings:       map[string]string{"output_path": "/tmp/cdl", "watchdog_timeout_ms": "4000"},
		Instance: Instance{
			Handle:             Handle{Value: 0x55a1c0ffee00, Name: "VkInstance"},
			Application:        "vkcube",
			ApplicationVersion: 1,
			Engine:             "vkcube-engine",
			EngineVersion:      2,
			APIVersion:         "4206847",
			Extensions:         []string{"VK_KHR_surface"},
		},
		Devices: []Device{
			{
				Handle:        Handle{Value: 0x7f81aa000010, Name: "VkDevice"},
				DeviceName:    "NVIDIA GeForce RTX 3060",
				APIVersion:    "4206852",
				DriverVersion: "2287376256",
				VendorID:      4318,
				DeviceID:      9475,
				Extensions:    []string{"VK_KHR_swapchain", "VK_KHR_maintenance4"},
				Queues: []Queue{
					{
						Handle:           Handle{Value: 0x7f81aa000200, Name: "VkQueue"},
						QueueFamilyIndex: 0,
						Index:            0,
						Submits: []Submit{
							{
								ID: 7,
								SubmitInfos: []SubmitInfo{
									{
										ID:             42,
										State:          "IncompleteSubmit",
										CommandBuffers: []string{"cb0"},
										SignalSemaphores: []SemaphoreInfo{
											{Handle: Handle{Value: 0x7f81aa000500, Name: "render"}, Type: "Timeline", Value: 9, LastValue: 8},
										},
										WaitSemaphores: []SemaphoreInfo{
											{Handle: Handle{Value: 0x7f81aa000400, Name: "acquire"}, Type: "Binary", Value: 1, LastValue: 0},
										},
									},
								},
							},
						},
					},
				},
				IncompleteCommandBuffers: []CommandBuffer{
					{
						State:                 "IncompleteCompletion",
						Handle:                Handle{Value: 0x7f81aa000300, Name: "cb0"},
						CommandPool:           Handle{Value: 0x7f81aa000600, Name: "pool0"},
						Queue:                 Handle{Value: 0x7f81aa000200, Name: "VkQueue"},
						Fence:                 Handle{Value: 0x7f81aa000700, Name: "fence0"},
						SubmitInfoID:          42,
						Level:                 "Primary",
						SimultaneousUse:       true,
						BeginValue:            1,
						EndValue:              2,
						TopCheckpointValue:    57,
						BottomCheckpointValue: 53,
						LastStartedCommand:    12,
						LastCompletedCommand:  9,
						Commands: []Command{
							{ID: 1, CheckpointValue: 54, Name: "vkCmdBindPipeline", State: "COMPLETED", Message: ""},
							{ID: 2, CheckpointValue: 58, Name: "vkCmdDraw", State: "RUNNING", Message: "possible fault"},
						},
					},
				},
			},
			{
				Handle:        Handle{Value: 0x7f81bb000010, Name: "VkDevice"},
				DeviceName:    "llvmpipe",
				APIVersion:    "4206847",
				DriverVersion: "1",
				VendorID:      65541,
				DeviceID:      0,
				AllCommandBuffers: []CommandBuffer{
					{State: "Submitted", Handle: Handle{Value: 0x7f81bb000300, Name: "cb1"}},
				},
			},
		},
	}

	doc := renderDump(original)
	parsed, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Failed to reparse rendered dump: %v\n%s", err, doc)
	}
	if !reflect.DeepEqual(parsed, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, original)
	}
}
