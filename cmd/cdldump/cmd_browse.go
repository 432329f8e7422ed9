package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/johnzupin/CrashDiagnosticLayer/dump"
	"github.com/spf13/cobra"
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 2)

func newBrowseCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse the reconstructed driver state interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			f, path, err := loadDump(file, root)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newBrowseModel(f, path), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "browse this dump file instead of searching")

	return cmd
}

// graphItem is one row in the browser: a node of the reconstructed
// graph, with its (already built) child rows if it can be descended into.
type graphItem struct {
	title    string
	desc     string
	children []list.Item
}

func (i graphItem) Title() string       { return i.title }
func (i graphItem) Description() string { return i.desc }
func (i graphItem) FilterValue() string { return i.title }

type browseModel struct {
	stack  []list.Model
	width  int
	height int
}

func newBrowseModel(f *dump.File, path string) browseModel {
	title := fmt.Sprintf("%s: dump v%s, captured %s", path, f.Version, f.StartTime)
	root := newLevel(title, deviceItems(f), 0, 0)
	return browseModel{stack: []list.Model{root}}
}

func newLevel(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	top := len(m.stack) - 1
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for i := range m.stack {
			m.stack[i].SetSize(msg.Width, msg.Height-1)
		}
	case tea.KeyMsg:
		if m.stack[top].FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if item, ok := m.stack[top].SelectedItem().(graphItem); ok && len(item.children) > 0 {
				next := newLevel(item.title, item.children, m.width, m.height-1)
				m.stack = append(m.stack, next)
				return m, nil
			}
		case "esc", "backspace":
			if top > 0 {
				m.stack = m.stack[:top]
				return m, nil
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.stack[len(m.stack)-1], cmd = m.stack[len(m.stack)-1].Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	return m.stack[len(m.stack)-1].View() + "\n" +
		helpStyle.Render("enter descend · esc back · q quit")
}

func deviceItems(f *dump.File) []list.Item {
	items := []list.Item{
		graphItem{
			title: "Instance " + f.Instance.Handle.String(),
			desc: fmt.Sprintf("%s v%d · %s v%d · api %s · %d extensions",
				f.Instance.Application, f.Instance.ApplicationVersion,
				f.Instance.Engine, f.Instance.EngineVersion,
				f.Instance.APIVersion, len(f.Instance.Extensions)),
		},
	}
	for i := range f.Devices {
		dev := &f.Devices[i]
		items = append(items, graphItem{
			title:    dev.DeviceName,
			desc:     fmt.Sprintf("%s · vendor 0x%x · device 0x%x", dev.Handle, dev.VendorID, dev.DeviceID),
			children: deviceChildren(dev),
		})
	}
	return items
}

func deviceChildren(dev *dump.Device) []list.Item {
	var items []list.Item
	for i := range dev.Queues {
		q := &dev.Queues[i]
		items = append(items, graphItem{
			title:    fmt.Sprintf("Queue %s", q.Handle),
			desc:     fmt.Sprintf("family %d · index %d · %d submits", q.QueueFamilyIndex, q.Index, len(q.Submits)),
			children: submitItems(q),
		})
	}
	items = append(items, commandBufferItems("Incomplete", dev.IncompleteCommandBuffers)...)
	items = append(items, commandBufferItems("All", dev.AllCommandBuffers)...)
	return items
}

func submitItems(q *dump.Queue) []list.Item {
	var items []list.Item
	for i := range q.Submits {
		s := &q.Submits[i]
		var children []list.Item
		for j := range s.SubmitInfos {
			children = append(children, submitInfoItem(&s.SubmitInfos[j]))
		}
		items = append(items, graphItem{
			title:    fmt.Sprintf("Submit %d", s.ID),
			desc:     fmt.Sprintf("%d submit infos", len(s.SubmitInfos)),
			children: children,
		})
	}
	return items
}

func submitInfoItem(info *dump.SubmitInfo) graphItem {
	var children []list.Item
	for _, cb := range info.CommandBuffers {
		children = append(children, graphItem{title: "CommandBuffer " + cb, desc: "referenced by this submit"})
	}
	for _, sem := range info.WaitSemaphores {
		children = append(children, semaphoreItem("wait", sem))
	}
	for _, sem := range info.SignalSemaphores {
		children = append(children, semaphoreItem("signal", sem))
	}
	return graphItem{
		title:    fmt.Sprintf("SubmitInfo %d", info.ID),
		desc:     fmt.Sprintf("state %s · %d command buffers", info.State, len(info.CommandBuffers)),
		children: children,
	}
}

func semaphoreItem(kind string, sem dump.SemaphoreInfo) graphItem {
	return graphItem{
		title: fmt.Sprintf("%s %s", kind, sem.Handle),
		desc:  fmt.Sprintf("type %s · value %d · last %d", sem.Type, sem.Value, sem.LastValue),
	}
}

func commandBufferItems(listing string, cbs []dump.CommandBuffer) []list.Item {
	var items []list.Item
	for i := range cbs {
		cb := &cbs[i]
		var children []list.Item
		for _, cmd := range cb.Commands {
			desc := fmt.Sprintf("checkpoint %d · %s", cmd.CheckpointValue, cmd.State)
			if cmd.Message != "" {
				desc += " · " + cmd.Message
			}
			children = append(children, graphItem{
				title: fmt.Sprintf("%d %s", cmd.ID, cmd.Name),
				desc:  desc,
			})
		}
		items = append(items, graphItem{
			title: fmt.Sprintf("%s CommandBuffer %s", listing, cb.Handle),
			desc: fmt.Sprintf("state %s · level %s · started %d · completed %d",
				cb.State, cb.Level, cb.LastStartedCommand, cb.LastCompletedCommand),
			children: children,
		})
	}
	return items
}
