//go:build !lambda

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "potionforge",
		Short: "Find the strongest potions your ingredients can brew",
		Long: `potionforge expands raw ingredients into processed variants, simulates every
combination up to the arcane power, keeps the strongest and cheapest recipe per
potion, and picks the set that brews the most potions within your stock.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./potions.yml or $HOME/.config/potionforge/potions.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("format", FormatText, "output format (text, yaml, json)")
	rootCmd.PersistentFlags().String("catalog", "", "catalog JSON file (default: embedded)")
	rootCmd.PersistentFlags().Int("workers", 0, "simulation workers (0 = GOMAXPROCS)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))

	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(bestCmd())
	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(catalogCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("potions")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/potionforge")
		}
	}
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return setupLogger(os.Stderr, viper.GetString("logging.level"), viper.GetString("logging.format"))
}

// loadPlanner reads the config and catalog and builds a planner.
func loadPlanner() (*Planner, error) {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("config loaded", "file", used)
	}
	catalog, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return NewPlanner(catalog, cfg)
}

func newProgressBar(desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

func recommendCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest which potions to brew from the configured ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			planner, err := loadPlanner()
			if err != nil {
				return err
			}
			if len(planner.Config.Ingredients) == 0 {
				return fmt.Errorf("%w: no ingredients configured", ErrInvalidConfig)
			}
			var bar *progressbar.ProgressBar
			if !quiet {
				bar = newProgressBar("simulating")
				planner.Progress = func(n int) { _ = bar.Add(n) }
			}

			report, runErr := planner.Run(cmd.Context(), Inventory(planner.Config.Ingredients))
			if bar != nil {
				_ = bar.Finish()
			}
			if report != nil {
				if err := RenderReport(cmd.OutOrStdout(), planner.Catalog, report, planner.Config); err != nil {
					return err
				}
			}
			var infeasible *InfeasibleError
			if errors.As(runErr, &infeasible) {
				slog.Error("no feasible selection", "phase", infeasible.Phase, "status", infeasible.Status)
			}
			return runErr
		},
	}
	cmd.Flags().Int("arcane-power", 3, "largest number of ingredients per recipe")
	cmd.Flags().String("strategy", StrategyLocal, "candidate strategy (local, exhaustive)")
	cmd.Flags().StringSlice("processes", DefaultConfig().Processes, "enabled processes (split, purify, convert)")
	cmd.Flags().Int("per-category", 5, "locally-best recipes kept per potion")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress spinner")
	_ = viper.BindPFlag("arcane_power", cmd.Flags().Lookup("arcane-power"))
	_ = viper.BindPFlag("strategy", cmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("processes", cmd.Flags().Lookup("processes"))
	_ = viper.BindPFlag("per_category", cmd.Flags().Lookup("per-category"))
	return cmd
}

func bestCmd() *cobra.Command {
	var explain, all bool
	cmd := &cobra.Command{
		Use:   "best <potion>",
		Short: "Show the strongest, cheapest recipes for one potion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planner, err := loadPlanner()
			if err != nil {
				return err
			}
			var inv Inventory
			if !all && len(planner.Config.Ingredients) > 0 {
				inv = Inventory(planner.Config.Ingredients)
			}
			recipes, err := planner.BestFor(cmd.Context(), args[0], inv)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, FormatCheatsheet(planner.Catalog, "Best", recipes))
			if explain {
				for _, r := range recipes {
					fmt.Fprint(out, FormatBreakdown(r))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the score contributions of each recipe")
	cmd.Flags().BoolVar(&all, "all", false, "use every catalog ingredient, ignoring the inventory")
	return cmd
}

func expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <ingredient>",
		Short: "List the processed variants of an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planner, err := loadPlanner()
			if err != nil {
				return err
			}
			it, ok := planner.Catalog.Item(args[0])
			if !ok {
				return unknownKeyError(ErrUnknownIngredient, args[0], planner.Catalog.ItemKeys())
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatVariants(Expand(planner.Catalog, it, planner.stages)))
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List ingredients and potions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := LoadCatalog(viper.GetString("catalog"))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatCatalog(catalog))
			return nil
		},
	}
}
