package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
	"github.com/matzehuels/dbnplot/pkg/render/tex"
)

var (
	exploreKeyStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	exploreEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags   expandFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore <model>",
		Short: "Change slice counts, display mode and dots interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, reg, opts, err := c.loadModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			if opts.ExportFile == "" {
				opts.ExportFile = defaultExportFile(m)
			}

			// The terminal UI owns the screen; log lines would tear it.
			quiet := log.New(io.Discard)
			ctx := withLogger(cmd.Context(), quiet)
			runner := c.newRunner(noCache)
			defer runner.Close()
			runner.Logger = quiet

			model := newExploreModel(ctx, runner, reg, opts)
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if em, ok := final.(exploreModel); ok && em.exported != "" {
				printSuccess(cmd.OutOrStdout(), "Exported %s", em.exported)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the artifact cache")
	return cmd
}

// exportedMsg reports the outcome of an export started from the explorer.
type exportedMsg struct {
	path string
	err  error
}

// exploreModel is the bubbletea model of the explore command. Every key
// press that changes an option re-expands the registry.
type exploreModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	reg    *dbn.Registry
	opts   pipeline.Options

	// suffix is restored when switching back to centered mode.
	suffix string

	diagram  *expand.Diagram
	err      error
	status   string
	exported string
}

func newExploreModel(ctx context.Context, runner *pipeline.Runner, reg *dbn.Registry, opts pipeline.Options) exploreModel {
	suffix := opts.CenterSuffix
	if suffix == "" {
		suffix = expand.DefaultCenterSuffix
	}
	m := exploreModel{ctx: ctx, runner: runner, reg: reg, opts: opts, suffix: suffix}
	m.expand()
	return m
}

func (m *exploreModel) expand() {
	m.diagram, m.err = expand.Expand(m.reg, m.opts.ExpandOptions())
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.opts.SliceBefore > 0 {
				m.opts.SliceBefore--
			}
		case "right", "l":
			m.opts.SliceBefore++
		case "down", "j":
			if m.opts.SliceAfter > 0 {
				m.opts.SliceAfter--
			}
		case "up", "k":
			m.opts.SliceAfter++
		case "c":
			if m.opts.CenterSuffix == "" {
				m.opts.CenterSuffix = m.suffix
			} else {
				m.opts.CenterSuffix = ""
			}
		case "d":
			m.opts.Dots = nextDots(m.opts.Dots)
		case "e", "enter":
			if m.err != nil {
				return m, nil
			}
			m.status = "exporting " + m.opts.ExportFile + "..."
			return m, m.export()
		default:
			return m, nil
		}
		m.status = ""
		m.expand()

	case exportedMsg:
		if msg.err != nil {
			m.status = StyleWarning.Render(errors.UserMessage(msg.err))
		} else {
			m.exported = msg.path
			m.status = StyleSuccess.Render(iconSuccess + " wrote " + msg.path)
		}
	}
	return m, nil
}

// export writes the current diagram in the background.
func (m exploreModel) export() tea.Cmd {
	ctx, runner, reg, opts := m.ctx, m.runner, m.reg, m.opts
	opts.Logger = loggerFromContext(ctx)
	return func() tea.Msg {
		res, err := runner.Export(ctx, reg, opts)
		if err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: res.Path}
	}
}

// nextDots cycles through the dots configurations.
func nextDots(d expand.DotsConfig) expand.DotsConfig {
	if d >= expand.DotsAuto {
		return expand.DotsDisabled
	}
	return d + 1
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("dbnplot explore"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("before %d · after %d · %s · dots %s",
		m.opts.SliceBefore, m.opts.SliceAfter, displayMode(m.opts.CenterSuffix), m.opts.Dots)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleWarning.Render(errors.UserMessage(m.err)))
	} else {
		b.WriteString(slicePreview(m.diagram))
		b.WriteString("\n")
		b.WriteString(statsLine(m.diagram.Stats(), false))
	}
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(exploreHelp())
	return b.String()
}

// slicePreview lays the diagram out as a table with one column per slice
// and one row per template. Variables appear in the slice they are drawn in.
func slicePreview(d *expand.Diagram) string {
	var (
		rows    []string
		cells   = map[string]map[int]string{}
		headers = make([]string, d.Slices+1)
	)
	for sid := 0; sid < d.Slices; sid++ {
		headers[sid+1] = fmt.Sprintf("slice %d", sid)
	}

	for _, n := range d.Nodes {
		if _, ok := cells[n.Template]; !ok {
			cells[n.Template] = map[int]string{}
			rows = append(rows, n.Template)
		}
		cells[n.Template][n.Slice] = tex.Unicode(n.Label)
	}

	t := newTable(headers...)
	for _, name := range rows {
		row := make([]string, d.Slices+1)
		row[0] = exploreKeyStyle.Render(name)
		for sid := 0; sid < d.Slices; sid++ {
			if label, ok := cells[name][sid]; ok {
				row[sid+1] = label
			} else {
				row[sid+1] = exploreEmptyStyle.Render("·")
			}
		}
		t.Row(row...)
	}

	var markers []string
	for _, mk := range d.Markers {
		markers = append(markers, string(mk.Side))
	}
	out := t.Render()
	if len(markers) > 0 {
		out += "\n" + StyleDim.Render("dots: "+strings.Join(markers, ", "))
	}
	return out
}

func exploreHelp() string {
	keys := []struct{ key, desc string }{
		{"←/→", "before"},
		{"↓/↑", "after"},
		{"c", "centered/absolute"},
		{"d", "dots"},
		{"e", "export"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = exploreKeyStyle.Render(k.key) + " " + StyleDim.Render(k.desc)
	}
	return strings.Join(parts, "  ")
}
