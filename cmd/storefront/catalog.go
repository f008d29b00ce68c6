package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/spf13/cobra"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import the product catalog",
		Long: `Inspect and import the product catalog.

Subcommands:
  list    - Print the products of the configured source
  import  - Copy a source into a SQLite catalog`,
	}

	cmd.AddCommand(newCatalogListCmd(root))
	cmd.AddCommand(newCatalogImportCmd(root))
	return cmd
}

func newCatalogListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the products of the configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			products, err := fetchCatalog(cmd.Context(), cfg.CatalogSource)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCATEGORY\tPRICE")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Category, p.Price.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newCatalogImportCmd(root *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a source into a SQLite catalog",
		Long: `Copy the configured source (--catalog or CATALOG_SOURCE) into a SQLite
catalog, replacing whatever it held. Serve it with --catalog sqlite://<db>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			products, err := fetchCatalog(cmd.Context(), cfg.CatalogSource)
			if err != nil {
				return err
			}

			repo, err := catalog.OpenRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.ReplaceAll(cmd.Context(), products); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products into %s\n", len(products), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "catalog.db", "SQLite database file")
	return cmd
}

func fetchCatalog(ctx context.Context, location string) ([]domain.Product, error) {
	source, closer, err := catalog.NewSource(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog source: %w", err)
	}
	defer closer.Close()

	products, err := source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	if err := catalog.Validate(products); err != nil {
		return nil, err
	}
	return products, nil
}
