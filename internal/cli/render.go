package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/lanes"
	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/manifest"
)

// Characters per lane in a vertical preview and rows per lane in a
// horizontal one.
const (
	previewLaneChars = 12
	previewLaneRows  = 4
)

// canvas is a character grid covering the container. Each cell remembers
// the lane of the item drawn over it so previews can be tinted per lane.
type canvas struct {
	cells  [][]rune
	lanes  [][]int
	sx, sy int
	width  int
	height int
}

func newCanvas(cfg grid.Config, laneSize int) *canvas {
	var sx, sy int
	if cfg.Orientation == lanes.Vertical {
		sx = max(1, laneSize/previewLaneChars)
		sy = 2 * sx
	} else {
		sy = max(1, laneSize/previewLaneRows)
		sx = max(1, sy/2)
	}

	c := &canvas{sx: sx, sy: sy, width: cfg.Width, height: cfg.Height}
	w, h := ceilDiv(cfg.Width, sx), ceilDiv(cfg.Height, sy)
	c.cells = make([][]rune, h)
	c.lanes = make([][]int, h)
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", w))
		c.lanes[y] = make([]int, w)
		for x := range c.lanes[y] {
			c.lanes[y][x] = lanes.NoLane
		}
	}
	return c
}

// draw outlines p's frame, clipped to the container, and writes its
// position and label inside.
func (c *canvas) draw(p layout.Placement) {
	f := p.Frame
	l, t := max(f.Left, 0), max(f.Top, 0)
	r, b := min(f.Right, c.width), min(f.Bottom, c.height)
	if l >= r || t >= b {
		return
	}
	x0, x1 := l/c.sx, (r-1)/c.sx
	y0, y1 := t/c.sy, (b-1)/c.sy

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.cells[y][x] = boxRune(x, y, x0, x1, y0, y1)
			c.lanes[y][x] = p.Lane
		}
	}

	if y1-y0 < 2 || x1-x0 < 2 {
		return
	}
	text := []rune(strings.TrimSpace(fmt.Sprintf("%d %s", p.Position, p.Label)))
	for i := 0; i < len(text) && x0+1+i < x1; i++ {
		c.cells[y0+1][x0+1+i] = text[i]
	}
}

func boxRune(x, y, x0, x1, y0, y1 int) rune {
	if x0 == x1 || y0 == y1 {
		return '#'
	}
	onX, onY := x == x0 || x == x1, y == y0 || y == y1
	switch {
	case onX && onY:
		return '+'
	case onY:
		return '-'
	case onX:
		return '|'
	default:
		return ' '
	}
}

// String returns the canvas without styling, trailing blanks trimmed.
func (c *canvas) String() string {
	lines := make([]string, len(c.cells))
	for y, row := range c.cells {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

// Styled returns the canvas with every cell tinted by its lane.
func (c *canvas) Styled() string {
	var b strings.Builder
	for y, row := range c.cells {
		for x, r := range row {
			lane := c.lanes[y][x]
			if lane == lanes.NoLane {
				b.WriteRune(r)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(laneColors[lane%len(laneColors)]).Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// preview draws every placement of res.
func preview(res *layout.Result) *canvas {
	c := newCanvas(res.Config, res.LaneSize)
	for _, p := range res.Placements {
		c.draw(p)
	}
	return c
}

// renderCommand creates the render command for terminal previews.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		noCache bool
		plain   bool
		jump    bool
	)
	opts := layout.Options{}

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Preview a layout in the terminal",
		Long: `Preview a layout in the terminal.

Draws the items that fill the viewport, each outlined and tinted by lane.
With --position the preview starts at that item, as after a jump.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jump = cmd.Flags().Changed("position") || cmd.Flags().Changed("offset")
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Cache.Close()

			var res *layout.Result
			if jump {
				res, _, err = runner.Jump(ctx, m, opts)
			} else {
				res, _, err = runner.Layout(ctx, m, opts)
			}
			if err != nil {
				return err
			}

			canvas := preview(res)
			if plain {
				fmt.Println(canvas.String())
			} else {
				fmt.Print(canvas.Styled())
			}
			return nil
		},
	}

	bindGridFlags(cmd, &opts)
	cmd.Flags().IntVarP(&opts.Target, "position", "p", 0, "first position to show")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "main-axis offset of that position")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colours")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
