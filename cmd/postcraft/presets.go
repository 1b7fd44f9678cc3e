package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/postcraft/internal/app/presets"
	"github.com/PabloGalante/postcraft/internal/config"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List quick topics and quick feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			catalog, err := presets.Load(cfg.PresetsFile)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			headerColor.Fprintln(tw, "Quick topics")
			for _, p := range catalog.Topics {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.ID, p.Label, p.Text)
			}
			headerColor.Fprintln(tw, "Quick feedback")
			for _, p := range catalog.Feedback {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.ID, p.Label, p.Text)
			}
			return tw.Flush()
		},
	}
}
