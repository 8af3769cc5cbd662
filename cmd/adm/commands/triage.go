package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"grovaapp/internal/models"
	"grovaapp/internal/triage"
	contextutils "grovaapp/internal/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// TriageCommand derives display values for a JSON array of feedback items
func TriageCommand() *cobra.Command {
	var (
		mode    string
		asJSON  bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "triage <file.json>",
		Short: "Derive scores and classes for feedback items",
		Long: `Read a JSON array of feedback items and print the effective score, score
class, anchor and signal breakdown the dashboard would show for each one.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readFeedbackFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			m := models.Mode(mode)
			if m != models.ModeDeveloper && m != models.ModeBusiness {
				return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown mode %q", mode)
			}

			views := triage.DeriveAll(items, m, time.Now())
			if asJSON {
				return printJSON(cmd.OutOrStdout(), views)
			}
			return printTriageTable(cmd.OutOrStdout(), views, !noColor)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(models.ModeDeveloper), "project mode: developer or business")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full derived views as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "do not colorize the score class column")

	return cmd
}

func readFeedbackFile(stdin io.Reader, path string) ([]models.FeedbackItem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read %s", path)
	}

	var items []models.FeedbackItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidFormat, "%s is not a JSON array of feedback items: %v", path, err)
	}
	return items, nil
}

func printTriageTable(w io.Writer, views []triage.View, colorize bool) error {
	classColors := map[triage.Class]*color.Color{
		triage.ClassLow:  color.New(color.FgGreen),
		triage.ClassMid:  color.New(color.FgYellow),
		triage.ClassHigh: color.New(color.FgRed, color.Bold),
	}
	for _, c := range classColors {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tCLASS\tANCHOR\tSIGNALS\tCATEGORY")
	for _, v := range views {
		class := string(v.ScoreClass)
		if c, ok := classColors[v.ScoreClass]; ok {
			class = c.Sprint(class)
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\t%s\n",
			v.Item.ID, v.EffectiveScore, class, v.ScoreAnchor, v.SignalBreakdown, v.Badge.Label)
	}
	return tw.Flush()
}
