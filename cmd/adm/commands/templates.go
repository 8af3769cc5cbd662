package commands

import (
	"fmt"
	"text/tabwriter"

	"grovaapp/internal/models"
	"grovaapp/internal/services"
	"grovaapp/internal/templates"
	contextutils "grovaapp/internal/utils"

	"github.com/spf13/cobra"
)

// TemplateCommands returns the email template commands
func TemplateCommands() *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Email template commands",
		Long: `Inspect the built-in email templates.

Available commands:
  list          - List every template
  render <id>   - Render a template with --var key=value substitutions`,
	}

	templatesCmd.AddCommand(templatesListCmd())
	templatesCmd.AddCommand(templatesRenderCmd())

	return templatesCmd
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tINTERNAL\tPLACEHOLDERS")
			for _, t := range templates.All() {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%v\n", t.ID, t.Name, t.Internal,
					templates.Placeholders(t.Subject+"\n"+t.Body))
			}
			return tw.Flush()
		},
	}
}

func templatesRenderCmd() *cobra.Command {
	var (
		vars   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, ok := templates.Get(args[0])
			if !ok {
				return contextutils.WrapErrorf(contextutils.ErrTemplateNotFound, "unknown template %q", args[0])
			}
			values, err := parseVars(vars)
			if err != nil {
				return err
			}

			rendered := templates.RenderEmail(tpl, values)
			switch format {
			case "text":
				fmt.Fprintln(cmd.OutOrStdout(), rendered.PlainText())
			case "html":
				html, err := templates.RenderHTML(rendered, services.BrandingFor(models.DefaultActionSettings("")))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), html)
			default:
				return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown format %q", format)
			}

			if len(rendered.Missing) > 0 {
				cmd.PrintErrf("unfilled placeholders: %v\n", rendered.Missing)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "template variable as key=value (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or html")

	return cmd
}
