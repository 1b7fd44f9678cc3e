package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/postcraft/internal/app/refinement"
	"github.com/PabloGalante/postcraft/internal/domain"
)

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	feedbackColor = color.New(color.FgYellow)
	statColor     = color.New(color.FgGreen)
	errorColor    = color.New(color.FgRed, color.Bold)
)

func newDraftCmd() *cobra.Command {
	var (
		topic       string
		presetTopic string
		steps       []refinement.FeedbackInput
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a post and refine it with feedback from the terminal",
		Long: "Generate a post for a topic, then regenerate it once per --feedback or --preset, in the order " +
			"they appear on the command line. Every version is printed; each regeneration sees all the feedback given before it.",
		Example: `postcraft draft --topic "Remote work tips" --preset hashtags --feedback "make it shorter" --preset professional`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" && presetTopic == "" {
				return fmt.Errorf("--topic or --preset-topic is required")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			session, err := a.svc.StartSession(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Session %s\n\n", session.ID)

			res, err := a.svc.Generate(ctx, refinement.GenerateInput{
				SessionID:   session.ID,
				Topic:       topic,
				PresetTopic: presetTopic,
			})
			if err != nil {
				return reportFailure(out, err)
			}
			printVersion(out, res.Version)

			for _, in := range steps {
				in.SessionID = session.ID
				res, err = a.svc.SubmitFeedback(ctx, in)
				if err != nil {
					return reportFailure(out, err)
				}
				printVersion(out, res.Version)
			}

			statColor.Fprintf(out, "%d version(s), %d feedback(s)\n",
				res.Session.IterationCount(), len(res.Session.FeedbackHistory))
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "what the post is about")
	cmd.Flags().StringVar(&presetTopic, "preset-topic", "", "quick topic id, used when --topic is empty (see: postcraft presets)")
	cmd.Flags().VarP(&feedbackFlag{steps: &steps}, "feedback", "f", "feedback to apply, repeatable")
	cmd.Flags().Var(&feedbackFlag{steps: &steps, preset: true}, "preset", "quick feedback id, repeatable (see: postcraft presets)")
	return cmd
}

// feedbackFlag appends to a list shared by --feedback and --preset, so the two
// keep their command-line order.
type feedbackFlag struct {
	steps  *[]refinement.FeedbackInput
	preset bool
}

func (f *feedbackFlag) String() string { return "" }

func (f *feedbackFlag) Type() string {
	if f.preset {
		return "id"
	}
	return "text"
}

func (f *feedbackFlag) Set(v string) error {
	in := refinement.FeedbackInput{Text: v}
	if f.preset {
		in = refinement.FeedbackInput{Preset: v}
	}
	*f.steps = append(*f.steps, in)
	return nil
}

func printVersion(w io.Writer, v domain.Version) {
	headerColor.Fprintf(w, "── Version %d ──\n", v.Index)
	if v.HasFeedback() {
		feedbackColor.Fprintf(w, "Feedback applied: %s\n", v.FeedbackApplied)
	}
	fmt.Fprintln(w, v.Text)
	statColor.Fprintf(w, "(%d characters)\n\n", v.CharCount())
}

// reportFailure tells the user whether retrying makes sense and passes err on.
func reportFailure(w io.Writer, err error) error {
	if domain.IsRetryable(err) {
		errorColor.Fprintln(w, "Generation failed; the session is unchanged and the request can be retried.")
	}
	return err
}
