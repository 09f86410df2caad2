package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/manifest"
	"github.com/matzehuels/spangrid/pkg/state"
)

// stateCommand creates the saved-state management command.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Save and resume grid states",
		Long: `Save and resume grid states.

A saved state holds every placement computed so far and the position the
viewport was anchored at. 'jump --state <id>' resumes from it without
recomputing lanes that were already assigned.`,
	}

	cmd.AddCommand(c.stateSaveCommand())
	cmd.AddCommand(c.stateShowCommand())
	cmd.AddCommand(c.stateListCommand())
	cmd.AddCommand(c.stateDeleteCommand())
	cmd.AddCommand(c.stateExportCommand())

	return cmd
}

func (c *CLI) stateSaveCommand() *cobra.Command {
	var ttl time.Duration
	opts := layout.Options{}

	cmd := &cobra.Command{
		Use:   "save [manifest]",
		Short: "Lay out a manifest and save its grid state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}
			opts.Logger = loggerFromContext(ctx)

			var res *layout.Result
			if cmd.Flags().Changed("position") || cmd.Flags().Changed("offset") {
				res, err = layout.Jump(ctx, m, opts)
			} else {
				res, err = layout.Compute(ctx, m, opts)
			}
			if err != nil {
				return err
			}

			store, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			snap := state.New(m.Name, m.Hash(), res.State, ttl)
			if err := store.Set(ctx, snap); err != nil {
				return fmt.Errorf("save state: %w", err)
			}

			printSuccess("Saved state %s", snap.ID)
			printDetail("%d entries, anchored at %d", len(snap.State.Entries), snap.State.AnchorPosition)
			printDetail("Expires %s", snap.ExpiresAt.Format(time.RFC3339))
			printNewline()
			printNextStep("Resume", fmt.Sprintf("%s jump %s --state %s", appName, args[0], snap.ID))
			return nil
		},
	}

	bindGridFlags(cmd, &opts)
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "place every item before saving")
	cmd.Flags().IntVarP(&opts.Target, "position", "p", 0, "anchor the state at this position")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "main-axis offset of the anchor")
	cmd.Flags().DurationVar(&ttl, "ttl", state.DefaultTTL, "how long to keep the state")

	return cmd
}

func (c *CLI) stateShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			snap, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			s := snap.State
			printKeyValue("ID", snap.ID)
			printKeyValue("Manifest", snap.Manifest)
			printKeyValue("Grid", fmt.Sprintf("%d %s lanes of %d", s.LaneCount, s.Orientation, s.LaneSize))
			printKeyValue("Anchor", fmt.Sprintf("position %d at %d", s.AnchorPosition, s.AnchorOffset))
			printKeyValue("Entries", fmt.Sprint(len(s.Entries)))
			printKeyValue("Created", snap.CreatedAt.Format(time.RFC3339))
			printKeyValue("Expires", snap.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full snapshot as JSON")
	return cmd
}

func (c *CLI) stateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			snaps, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				printInfo("No saved states")
				return nil
			}
			for _, snap := range snaps {
				fmt.Printf("%s  %s\n", StyleValue.Render(snap.ID), StyleDim.Render(fmt.Sprintf(
					"%s · %d entries · %s", snap.Manifest, len(snap.State.Entries), snap.CreatedAt.Format(time.DateTime))))
			}
			return nil
		},
	}
}

func (c *CLI) stateDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := state.ValidateID(args[0]); err != nil {
				return err
			}
			store, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted state %s", args[0])
			return nil
		},
	}
}

func (c *CLI) stateExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a saved state in its binary form",
		Long: `Write a saved state in its binary form.

The file can be handed to 'jump --state-file' on another machine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			snap, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := snap.State.MarshalBinary()
			if err != nil {
				return err
			}
			if output == "" {
				output = snap.ID + ".state"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported %d bytes", len(data))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <id>.state)")
	return cmd
}
