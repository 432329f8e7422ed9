package main

import (
	"fmt"

	"github.com/johnzupin/CrashDiagnosticLayer/dump"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cdldump")

// loadDump resolves the dump either from an explicit --file or by
// searching the given directory for the single cdl_dump.yaml.
func loadDump(file, root string) (*dump.File, string, error) {
	path := file
	if path == "" {
		located, err := dump.Locate(root)
		if err != nil {
			return nil, "", err
		}
		path = located
		log.Debugf("located dump at %s", path)
	}
	f, err := dump.ParseFile(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

func newValidateCmd() *cobra.Command {
	var file string
	var verbosity int

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check that a crash dump matches the expected schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(verbosity, nil)
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			f, path, err := loadDump(file, root)
			if err != nil {
				return err
			}
			queues, commandBuffers := 0, 0
			for _, dev := range f.Devices {
				queues += len(dev.Queues)
				commandBuffers += len(dev.IncompleteCommandBuffers) + len(dev.AllCommandBuffers)
			}
			log.Infof("dump version %s, captured %s", f.Version, f.StartTime)
			fmt.Printf("%s: ok (%d devices, %d queues, %d command buffers)\n",
				path, len(f.Devices), queues, commandBuffers)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "validate this dump file instead of searching")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	return cmd
}
