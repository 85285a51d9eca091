package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/labctl/labctl/internal/config"
	"github.com/labctl/labctl/internal/logtail"
)

func newLogsCommand(g *globals) *cobra.Command {
	var (
		lines int
		level string
		color bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the labctl log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			tail, err := logtail.Read(cfg.LogFile, lines)
			if err != nil {
				return err
			}
			if strings.TrimSpace(level) != "" {
				threshold, err := logrus.ParseLevel(level)
				if err != nil {
					return fmt.Errorf("parse level: %w", err)
				}
				tail = logtail.FilterLevel(tail, threshold)
			}
			if color {
				tail = logtail.ColorizeLines(tail)
			}

			out := cmd.OutOrStdout()
			if len(tail) == 0 {
				fmt.Fprintf(out, "No log lines in %s.\n", cfg.LogFile)
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 shows all)")
	cmd.Flags().StringVar(&level, "level", "", "only show entries at this level or more severe")
	cmd.Flags().BoolVar(&color, "color", false, "highlight levels and fields")
	return cmd
}
