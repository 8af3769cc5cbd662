package commands

import (
	"context"
	"fmt"

	"grovaapp/internal/models"
	"grovaapp/internal/services"

	"github.com/spf13/cobra"
)

// DefaultClientScope is the preference scope used when --client is not given
const DefaultClientScope = "adm"

// BizConfigServiceFactory opens the preference store and returns the service
// with a function that releases the store.
type BizConfigServiceFactory func(ctx context.Context) (*services.BizConfigService, func(), error)

// BizConfigCommands returns commands that inspect and edit a client's
// business widget configuration.
func BizConfigCommands(open BizConfigServiceFactory) *cobra.Command {
	var client string

	bizCmd := &cobra.Command{
		Use:   "bizconfig",
		Short: "Business widget configuration commands",
		Long: `Inspect and edit the business widget configuration a dashboard client
keeps for a project. Use --client to pick the client scope.

Available commands:
  show <project>                      - Print the configuration
  add-category <project> <name>       - Append a feedback category
  preset <project> <type>             - Switch business type and its preset categories`,
	}
	bizCmd.PersistentFlags().StringVar(&client, "client", DefaultClientScope, "client scope the configuration belongs to")

	run := func(change func(ctx context.Context, svc *services.BizConfigService, args []string) (models.BizConfig, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, closeStore, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := change(ctx, svc, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		}
	}

	bizCmd.AddCommand(&cobra.Command{
		Use:   "show <project>",
		Short: "Print the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc *services.BizConfigService, args []string) (models.BizConfig, error) {
			return svc.Get(ctx, client, args[0])
		}),
	})

	bizCmd.AddCommand(&cobra.Command{
		Use:   "add-category <project> <name>",
		Short: "Append a feedback category",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, svc *services.BizConfigService, args []string) (models.BizConfig, error) {
			return svc.AddCategory(ctx, client, args[0], args[1])
		}),
	})

	bizCmd.AddCommand(&cobra.Command{
		Use:       "preset <project> <type>",
		Short:     "Switch business type and its preset categories",
		Args:      cobra.ExactArgs(2),
		ValidArgs: models.BusinessTypes,
		RunE: run(func(ctx context.Context, svc *services.BizConfigService, args []string) (models.BizConfig, error) {
			return svc.SetType(ctx, client, args[0], args[1])
		}),
	})

	return bizCmd
}

// VersionCommand prints build information
func VersionCommand(info fmt.Stringer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(info.String())
		},
	}
}
