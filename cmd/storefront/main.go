// Command storefront serves the dessert storefront and manages its catalog.
package main

import (
	"fmt"
	"os"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogSource string
	logLevel      string
	logFormat     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Product list with cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.catalogSource, "catalog", "", "Catalog source: embedded, http(s) URL, sqlite://path or JSON file (or set CATALOG_SOURCE)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (or set LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: json or console (or set LOG_FORMAT)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCatalogCmd(opts))
	return cmd
}

// loadConfig reads the environment and applies any flags given on the command line.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.catalogSource != "" {
		cfg.CatalogSource = o.catalogSource
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
