package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/johnzupin/CrashDiagnosticLayer/dump"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var file string
	var showSettings bool

	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print the reconstructed driver state as a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			f, _, err := loadDump(file, root)
			if err != nil {
				return err
			}
			printDump(os.Stdout, f, showSettings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "show this dump file instead of searching")
	cmd.Flags().BoolVar(&showSettings, "settings", false, "include layer settings in the output")

	return cmd
}

func printDump(w io.Writer, f *dump.File, showSettings bool) {
	fmt.Fprintf(w, "dump version %s, captured %s (+%s)\n", f.Version, f.StartTime, f.TimeSinceStart)
	if showSettings {
		keys := make([]string, 0, len(f.Settings))
		for k := range f.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  setting %s = %s\n", k, f.Settings[k])
		}
	}
	fmt.Fprintf(w, "instance %s  app=%s v%d  engine=%s v%d  api=%s\n",
		f.Instance.Handle, f.Instance.Application, f.Instance.ApplicationVersion,
		f.Instance.Engine, f.Instance.EngineVersion, f.Instance.APIVersion)
	for i := range f.Devices {
		printDevice(w, &f.Devices[i])
	}
}

func printDevice(w io.Writer, dev *dump.Device) {
	fmt.Fprintf(w, "device %s  %s  vendor=0x%x device=0x%x driver=%s\n",
		dev.Handle, dev.DeviceName, dev.VendorID, dev.DeviceID, dev.DriverVersion)
	for i := range dev.Queues {
		q := &dev.Queues[i]
		fmt.Fprintf(w, "  queue %s  family=%d index=%d\n", q.Handle, q.QueueFamilyIndex, q.Index)
		for j := range q.Submits {
			s := &q.Submits[j]
			fmt.Fprintf(w, "    submit %d\n", s.ID)
			for k := range s.SubmitInfos {
				printSubmitInfo(w, &s.SubmitInfos[k])
			}
		}
	}
	printCommandBuffers(w, "incomplete", dev.IncompleteCommandBuffers)
	printCommandBuffers(w, "all", dev.AllCommandBuffers)
}

func printSubmitInfo(w io.Writer, info *dump.SubmitInfo) {
	fmt.Fprintf(w, "      submit info %d  state=%s\n", info.ID, info.State)
	for _, cb := range info.CommandBuffers {
		fmt.Fprintf(w, "        command buffer %s\n", cb)
	}
	for _, sem := range info.WaitSemaphores {
		fmt.Fprintf(w, "        wait %s  type=%s value=%d last=%d\n",
			sem.Handle, sem.Type, sem.Value, sem.LastValue)
	}
	for _, sem := range info.SignalSemaphores {
		fmt.Fprintf(w, "        signal %s  type=%s value=%d last=%d\n",
			sem.Handle, sem.Type, sem.Value, sem.LastValue)
	}
}

func printCommandBuffers(w io.Writer, listing string, cbs []dump.CommandBuffer) {
	for i := range cbs {
		cb := &cbs[i]
		fmt.Fprintf(w, "  %s command buffer %s  state=%s level=%s pool=%s\n",
			listing, cb.Handle, cb.State, cb.Level, cb.CommandPool)
		fmt.Fprintf(w, "    progress begin=%d end=%d top=%d bottom=%d started=%d completed=%d\n",
			cb.BeginValue, cb.EndValue, cb.TopCheckpointValue, cb.BottomCheckpointValue,
			cb.LastStartedCommand, cb.LastCompletedCommand)
		for _, cmd := range cb.Commands {
			fmt.Fprintf(w, "    command %d %s  checkpoint=%d state=%s", cmd.ID, cmd.Name, cmd.CheckpointValue, cmd.State)
			if cmd.Message != "" {
				fmt.Fprintf(w, "  %s", cmd.Message)
			}
			fmt.Fprintln(w)
		}
	}
}
