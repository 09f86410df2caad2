package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spangrid/pkg/grid"
	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/manifest"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := layout.Options{}

	cmd := &cobra.Command{
		Use:   "layout [manifest]",
		Short: "Compute item placements for a manifest",
		Long: `Compute item placements for a manifest.

Items are attached in order until the viewport is covered, or all of them
with --all. The result lists every attached item's lane and frame together
with the saved grid state, and is written as JSON (default:
<manifest>.layout.json, "-" for stdout).

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, false)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <manifest>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "lay out every item, not just the viewport")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	bindGridFlags(cmd, &opts)

	return cmd
}

// jumpCommand creates the jump command.
func (c *CLI) jumpCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		stateID   string
		stateFile string
	)
	opts := layout.Options{}

	cmd := &cobra.Command{
		Use:   "jump [manifest]",
		Short: "Lay out a manifest as if scrolled straight to a position",
		Long: `Lay out a manifest as if scrolled straight to a position.

Lanes are rebuilt from the first item up to --position, then shifted so that
item starts at --offset, and the viewport is filled around it. With --state
or --state-file, placements saved earlier are reused and the jump goes to the
saved anchor unless --position is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			saved, err := c.loadSavedState(ctx, stateID, stateFile)
			if err != nil {
				return err
			}
			if saved != nil {
				opts.State = saved
				if !cmd.Flags().Changed("position") {
					opts.Target, opts.Offset = saved.AnchorPosition, saved.AnchorOffset
				}
			}
			return c.runLayout(ctx, args[0], opts, output, noCache, true)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <manifest>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&opts.Target, "position", "p", 0, "position to jump to")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "main-axis offset of the position's block")
	cmd.Flags().StringVar(&stateID, "state", "", "saved state ID to resume")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "binary state file written by 'state export'")
	cmd.MarkFlagsMutuallyExclusive("state", "state-file")
	bindGridFlags(cmd, &opts)

	return cmd
}

// loadSavedState reads a state from the store or a binary file. It returns
// nil when neither is given.
func (c *CLI) loadSavedState(ctx context.Context, id, file string) (*grid.SavedState, error) {
	switch {
	case id != "":
		store, err := c.newStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		defer store.Close()
		snap, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &snap.State, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read state file: %w", err)
		}
		var s grid.SavedState
		if err := s.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		return &s, nil
	default:
		return nil, nil
	}
}

// runLayout computes a layout or jump and writes it out.
func (c *CLI) runLayout(ctx context.Context, input string, opts layout.Options, output string, noCache, jump bool) error {
	logger := loggerFromContext(ctx)
	m, err := manifest.ParseFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()
	opts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Placing %d items...", m.Len()))
	if jump && opts.Target > 0 {
		spinner.SetMessage(fmt.Sprintf("Replaying %d positions...", opts.Target))
	}
	spinner.Start()

	var (
		res      *layout.Result
		cacheHit bool
	)
	if jump {
		res, cacheHit, err = runner.Jump(ctx, m, opts)
	} else {
		res, cacheHit, err = runner.Layout(ctx, m, opts)
	}
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Placed %d items", res.Stats.Attached))

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := writeResult(res, outputPath); err != nil {
		return err
	}
	if outputPath == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats, cacheHit)
	if res.Stats.Unplaceable > 0 {
		printWarning("%d items did not fit any lane", res.Stats.Unplaceable)
	}
	printNewline()
	printNextStep("Preview", appName+" render "+input)
	return nil
}

// writeResult writes res as indented JSON to path, or stdout for "-".
func writeResult(res *layout.Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
