// Command leadctl runs lead routing, re-routing, builder imports and ad hoc
// matching from the shell against the configured store.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stand-lead-engine/internal/app"
	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/utils"
)

// flags shared by every subcommand
type globalFlags struct {
	store    string
	builders string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "leadctl",
		Short:        "Route exhibition stand leads and match builders",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.store, "store", "", "store backend override (postgres or memory)")
	root.PersistentFlags().StringVar(&g.builders, "builders", "", "builder CSV to seed the memory store with")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newRouteCmd(g),
		newReRouteCmd(g),
		newAnalyticsCmd(g),
		newImportCmd(g),
		newMatchCmd(g),
		newTradeShowsCmd(g),
		newMigrateCmd(g),
	)
	return root
}

// withApp loads config, applies flag overrides and hands a wired App to fn.
func withApp(ctx context.Context, g *globalFlags, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if g.store != "" {
		cfg.StoreBackend = g.store
	}
	if g.builders != "" {
		cfg.BuildersCSV = g.builders
	}

	if err := utils.InitLogger(g.logLevel); err != nil {
		return err
	}
	defer utils.Sync()

	a, err := app.New(ctx, cfg, utils.Logger.Named("leadctl"))
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func logger() *zap.Logger {
	return utils.GetLogger().Named("leadctl")
}
