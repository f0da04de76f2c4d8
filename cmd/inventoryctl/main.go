package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/iyhunko/inventory-console/internal/analytics"
	"github.com/iyhunko/inventory-console/internal/catalog"
	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/iyhunko/inventory-console/internal/filter"
	"github.com/iyhunko/inventory-console/internal/logger"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/remote"
	"github.com/iyhunko/inventory-console/internal/service"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	timeout time.Duration
	output  string
	verbose bool

	query    string
	category string

	draft model.Draft
)

var rootCmd = &cobra.Command{
	Use:   "inventoryctl",
	Short: "Inspect and edit the remote product catalog",
	Long: `inventoryctl loads the remote catalog and runs one operation against it.

Mutating commands apply the change optimistically, wait for the catalog to
confirm it, and exit non-zero when the change was rolled back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(logger.New(cmd.ErrOrStderr(), verbose))
		_, err := newRenderer(output, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr(config.CatalogAPIURLEnv, config.DefaultCatalogAPIURL), "Base URL of the catalog API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultRemoteTimeout, "Timeout of each catalog call")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatTable, "Output format: json, yaml or table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	listCmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive text matched against name and category")
	listCmd.Flags().StringVarP(&category, "category", "c", "", "Exact category")

	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		cmd.Flags().StringVar(&draft.Name, "name", "", "Product name")
		cmd.Flags().StringVar(&draft.Category, "category", "", "Product category")
		cmd.Flags().Float64Var(&draft.Price, "price", 0, "Unit price")
		cmd.Flags().StringVar(&draft.Description, "description", "", "Product description")
		cmd.Flags().StringVar(&draft.Image, "image", "", "Image URL")
	}

	rootCmd.AddCommand(listCmd, categoriesCmd, analyticsCmd, createCmd, updateCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		products := filter.Apply(engine.Snapshot(), filter.Criteria{Query: query, Category: category})
		return render(cmd, products)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the distinct categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		return render(cmd, analytics.Categories(engine.Snapshot()))
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show inventory figures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		return render(cmd, analytics.Summarize(engine.Snapshot()))
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, engine *service.Engine) (*service.Mutation, error) {
			return engine.Create(ctx, draft)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, engine *service.Engine) (*service.Mutation, error) {
			return engine.Update(ctx, model.ID(args[0]), draft)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, engine *service.Engine) (*service.Mutation, error) {
			return engine.Delete(ctx, model.ID(args[0]))
		})
	},
}

func loadEngine(cmd *cobra.Command) (*service.Engine, error) {
	client, err := remote.NewHTTPClient(apiURL, timeout)
	if err != nil {
		return nil, err
	}
	engine := service.NewEngine(catalog.NewStore(), client, service.WithRemoteTimeout(timeout))
	result, err := engine.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d malformed catalog record(s) skipped\n", len(result.Skipped))
	}
	return engine, nil
}

func mutate(cmd *cobra.Command, submit func(ctx context.Context, engine *service.Engine) (*service.Mutation, error)) error {
	ctx := cmd.Context()
	engine, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	m, err := submit(ctx, engine)
	if err != nil {
		return err
	}
	if err := m.Wait(ctx); err != nil {
		return fmt.Errorf("%s rolled back: %w", m.Kind(), err)
	}
	return render(cmd, m.Info())
}

func render(cmd *cobra.Command, v any) error {
	r, err := newRenderer(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.Render(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
