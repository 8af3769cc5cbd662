package commands

import (
	"encoding/json"

	"grovaapp/internal/demo"
	"grovaapp/internal/models"
	contextutils "grovaapp/internal/utils"

	"github.com/spf13/cobra"
)

// DemoCommands returns commands that query the demo simulator offline
func DemoCommands() *cobra.Command {
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Query the demo fixtures",
		Long: `Print the demo simulator's answer for a feedback API path, exactly as a
demo session would receive it.

Available commands:
  get <path>    - e.g. "feedback?project_id=demo-dev&status=pending"
  post <path>   - e.g. "feedback/dd1/approve" or "actions/send"`,
	}

	demoCmd.AddCommand(demoGetCmd())
	demoCmd.AddCommand(demoPostCmd())

	return demoCmd
}

func demoGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print the simulator response to a GET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := demo.NewSimulator()
			if err != nil {
				return contextutils.WrapError(err, "failed to load demo fixtures")
			}
			return printJSON(cmd.OutOrStdout(), sim.Get(args[0]))
		},
	}
}

func demoPostCmd() *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "post <path>",
		Short: "Print the simulator response to a POST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := demo.NewSimulator()
			if err != nil {
				return contextutils.WrapError(err, "failed to load demo fixtures")
			}

			var payload interface{}
			if body != "" {
				var req models.CreateProjectRequest
				if err := json.Unmarshal([]byte(body), &req); err != nil {
					return contextutils.WrapErrorf(contextutils.ErrInvalidFormat, "invalid --body: %v", err)
				}
				payload = req
			}
			return printJSON(cmd.OutOrStdout(), sim.Post(args[0], payload))
		},
	}

	cmd.Flags().StringVar(&body, "body", "", `JSON body for project creation, e.g. '{"name":"Shop"}'`)

	return cmd
}
