package cli

import (
	"github.com/spf13/cobra"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/view"
)

func newListCommand(g *globals) *cobra.Command {
	var (
		status string
		search string
		page   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List labs with optional status filter, search and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := labapi.ParseFilterKey(status)
			if err != nil {
				return err
			}
			if err := checkOutput(output); err != nil {
				return err
			}

			rt, err := g.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			entry, err := rt.Engine.Fetch(cmd.Context(), filter)
			if err != nil {
				return err
			}

			derived := view.Derive(entry.Labs, search, page)
			out := cmd.OutOrStdout()
			if output == outputJSON {
				return writeJSON(out, listPayload{
					Filter:     filter.String(),
					Search:     search,
					Page:       derived.Page,
					TotalPages: derived.TotalPages,
					Total:      derived.Total,
					Labs:       derived.Rows,
				})
			}
			renderPage(out, derived, filter, search)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "status filter: all, active or inactive")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive match on name or description")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show (clamped to the last page)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newGetCommand(g *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one lab with its setup steps",
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

			lab, err := rt.Engine.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), lab)
			}
			renderLab(cmd.OutOrStdout(), lab)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}
