package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/manifest"
)

var (
	viewerHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewerStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewerErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// ViewerModel - Interactive scrolling preview
// =============================================================================

// ViewerModel scrolls a viewport interactively. Every key press scrolls the
// engine, which attaches and recycles items exactly as a host container
// would.
type ViewerModel struct {
	ctx      context.Context
	name     string
	viewport *layout.Viewport
	step     int
	page     int
	scrolled int
	err      error
}

// NewViewerModel creates a viewer over a filled viewport.
func NewViewerModel(ctx context.Context, name string, v *layout.Viewport) ViewerModel {
	cfg := v.Engine().Config()
	return ViewerModel{
		ctx:      ctx,
		name:     name,
		viewport: v,
		step:     max(1, v.Engine().Lanes().LaneSize()/4),
		page:     max(1, cfg.MainSize()*3/4),
	}
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	var delta int
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "down", "j", "right", "l":
		delta = m.step
	case "up", "k", "left", "h":
		delta = -m.step
	case "pgdown", " ", "f":
		delta = m.page
	case "pgup", "b":
		delta = -m.page
	case "home", "g":
		delta = -m.scrolled
	default:
		return m, nil
	}

	moved, err := m.viewport.Scroll(m.ctx, delta)
	m.scrolled += moved
	m.err = err
	return m, nil
}

func (m ViewerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString("\n")
	b.WriteString(viewerHelpStyle.Render("j/k scroll  f/b page  g start  q quit"))
	b.WriteString("\n\n")

	res := m.snapshot()
	b.WriteString(preview(res).Styled())
	b.WriteString("\n")

	status := fmt.Sprintf("offset %d · %d attached · %d entries", m.scrolled, len(res.Placements), m.viewport.Engine().Entries().Len())
	if first, last, ok := m.viewport.Range(); ok {
		status = fmt.Sprintf("items %d-%d · %s", first, last, status)
	}
	b.WriteString(viewerStatusStyle.Render(status))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(viewerErrorStyle.Render(m.err.Error()))
	}
	return b.String()
}

// snapshot collects the attached placements without the run statistics.
func (m ViewerModel) snapshot() *layout.Result {
	e := m.viewport.Engine()
	res := &layout.Result{Config: e.Config(), LaneSize: e.Lanes().LaneSize()}
	for _, item := range e.Attached() {
		res.Placements = append(res.Placements, layout.Placement{
			Position: item.Position,
			Label:    item.Label,
			Lane:     item.Lane,
			Frame:    item.Frame,
		})
	}
	return res
}

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	opts := layout.Options{}

	cmd := &cobra.Command{
		Use:   "view [manifest]",
		Short: "Scroll through a layout interactively",
		Long: `Scroll through a layout interactively.

Scrolling attaches items as they come into view and recycles those that
leave it, so the preview shows the engine's behaviour while scrolling in both
directions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}
			opts.Logger = newLogger(io.Discard, LogInfo)
			v, err := layout.NewEngineViewport(m, &opts)
			if err != nil {
				return err
			}
			if opts.Target > 0 {
				err = v.JumpTo(ctx, opts.Target, 0)
			} else {
				err = v.Fill(ctx)
			}
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(NewViewerModel(ctx, m.Name, v), tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	bindGridFlags(cmd, &opts)
	cmd.Flags().IntVarP(&opts.Target, "position", "p", 0, "position to start at")

	return cmd
}
