package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/postcraft/internal/domain"
)

func newSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions, most recent first (sqlite and firestore storage)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.svc.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVERSIONS\tFEEDBACK\tUPDATED\tTOPIC")
			for _, s := range sessions {
				topic := ""
				if v, ok := s.LatestVersion(); ok {
					topic = v.Topic
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
					s.ID, s.IterationCount(), len(s.FeedbackHistory), s.UpdatedAt.Format(time.RFC3339), topic)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of sessions to show (0 = all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "export SESSION_ID",
		Short: "Print the text of a version, the current one by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			v, err := a.svc.ExportVersion(cmd.Context(), domain.SessionID(args[0]), version)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.Text)
			return err
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "version index (0 = current)")
	return cmd
}
