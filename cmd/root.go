package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodmarket/internal/models"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "foodmarket",
	Short: "Price intelligence and commission accounting for a food delivery marketplace",
	Long: `foodmarket compares menu prices across open restaurants, computes the weekly
platform commission each restaurant owes, escalates penalties for late payers
and ranks the storefront accordingly.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./foodmarket.yaml)")
	rootCmd.PersistentFlags().String("store", "postgres", "backing store: postgres or memory")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the snapshot cache")
	rootCmd.PersistentFlags().Bool("kafka-enabled", false, "Enable Kafka output for accounting events")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.PersistentFlags().String("output-format", "console", "event output when Kafka is disabled: console or json")
	rootCmd.PersistentFlags().String("timezone", "Local", "timezone used to bucket orders into weeks")

	rootCmd.AddCommand(intelCmd, commissionCmd, statusCmd, invoicesCmd, markPaidCmd, storefrontCmd, exportCmd, seedCmd)
}

func loadConfig(cmd *cobra.Command) (*models.Config, error) {
	cfg, err := models.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

// run loads the configuration, builds the backend and hands it to fn.
func run(cmd *cobra.Command, fn func(ctx context.Context, b *backend) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	b, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
