package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// layoutCommand creates the saved-layout management command.
func (c *CLI) layoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Manage saved dashboard layouts",
	}

	cmd.AddCommand(c.layoutListCommand())
	cmd.AddCommand(c.layoutShowCommand())
	cmd.AddCommand(c.layoutDeleteCommand())

	return cmd
}

// layoutListCommand creates the "layout list" subcommand.
func (c *CLI) layoutListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			saves, err := newStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer saves.Close(ctx)

			all, err := saves.List(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				printInfo("No saved layouts")
				return nil
			}

			rows := make([][]string, 0, len(all))
			for _, s := range all {
				rows = append(rows, []string{
					s.Name,
					fmt.Sprintf("%d", len(s.Positions)),
					fmt.Sprintf("%d%%", int(s.Zoom*100+0.5)),
					s.UpdatedAt.Local().Format("Jan 2 15:04"),
				})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Name", "Nodes", "Zoom", "Updated").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
					}
					return lipgloss.NewStyle().Foreground(colorWhite)
				})
			fmt.Println(t.Render())
			return nil
		},
	}
}

// layoutShowCommand creates the "layout show" subcommand.
func (c *CLI) layoutShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			saves, err := newStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer saves.Close(ctx)

			s, err := saves.Get(ctx, args[0])
			if err != nil {
				return err
			}

			printKeyValue("Name", s.Name)
			printKeyValue("Nodes", fmt.Sprintf("%d", len(s.Positions)))
			printKeyValue("Zoom", fmt.Sprintf("%d%%", int(s.Zoom*100+0.5)))
			printKeyValue("Pan", fmt.Sprintf("%.0f, %.0f", s.Pan.X, s.Pan.Y))
			printKeyValue("Created", s.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
			printKeyValue("Updated", s.UpdatedAt.Local().Format("Jan 2, 2006 15:04"))
			return nil
		},
	}
}

// layoutDeleteCommand creates the "layout delete" subcommand.
func (c *CLI) layoutDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			saves, err := newStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer saves.Close(ctx)

			if err := saves.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted layout %q", args[0])
			return nil
		},
	}
}
