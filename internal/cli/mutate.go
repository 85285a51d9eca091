package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labctl/labctl/internal/app"
	"github.com/labctl/labctl/internal/form"
	"github.com/labctl/labctl/internal/state"
)

// report prints the outcome notification of m, or turns it into an error.
func report(w io.Writer, rt *app.Runtime, m state.Mutation) error {
	message := m.Kind.String()
	if notes := rt.Notices.Drain(); len(notes) > 0 {
		message = notes[len(notes)-1].Message
	}
	if m.Err != nil {
		return fmt.Errorf("%s: %w", message, m.Err)
	}
	fmt.Fprintln(w, message)
	return nil
}

func newCreateCommand(g *globals) *cobra.Command {
	var (
		flags  draftFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lab from flags or a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			var dialog form.Controller
			dialog.OpenCreate()
			if err := flags.fill(cmd, &dialog); err != nil {
				return err
			}
			// Validate before touching config or the network.
			if open, ok := dialog.Edit().(form.EditOpen); ok {
				if _, err := form.Validate(open.Draft); err != nil {
					return err
				}
			}

			rt, err := g.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := dialog.CommitEdit(cmd.Context(), rt.Engine)
			if m.Status == state.MutationIdle {
				return err
			}
			return finishWrite(cmd, rt, m, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newUpdateCommand(g *globals) *cobra.Command {
	var (
		flags  draftFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a lab; fields you do not set keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			rt, err := g.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			current, err := rt.Engine.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var dialog form.Controller
			dialog.OpenEdit(current)
			if err := flags.fill(cmd, &dialog); err != nil {
				return err
			}
			m, err := dialog.CommitEdit(cmd.Context(), rt.Engine)
			if m.Status == state.MutationIdle {
				return err
			}
			return finishWrite(cmd, rt, m, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func finishWrite(cmd *cobra.Command, rt *app.Runtime, m state.Mutation, output string) error {
	out := cmd.OutOrStdout()
	if output == outputJSON {
		if m.Err != nil {
			return report(io.Discard, rt, m)
		}
		rt.Notices.Drain()
		return writeJSON(out, m.Lab)
	}
	if err := report(out, rt, m); err != nil {
		return err
	}
	if m.Lab != nil {
		renderLab(out, *m.Lab)
	}
	return nil
}

func newDeleteCommand(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a lab after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			lab, err := rt.Engine.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var dialog form.Controller
			dialog.OpenDelete(lab)
			if !yes && !confirm(cmd, fmt.Sprintf("Delete lab %q (%s)? [y/N] ", lab.Name, lab.ID)) {
				dialog.CancelDelete()
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			m, err := dialog.CommitDelete(cmd.Context(), rt.Engine)
			if m.Status == state.MutationIdle {
				return err
			}
			return report(cmd.OutOrStdout(), rt, m)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func newToggleCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a lab between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			m := rt.Engine.Toggle(cmd.Context(), args[0])
			if err := report(cmd.OutOrStdout(), rt, m); err != nil {
				return err
			}
			if m.Lab != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", m.Lab.Name, strings.ToLower(statusLabel(m.Lab.IsActive)))
			}
			return nil
		},
	}
}
