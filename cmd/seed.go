package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodmarket/internal/factories"
	"github.com/chrisdamba/foodmarket/internal/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with generated restaurants, menus and orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if catalogFile, _ := cmd.Flags().GetString("catalog-file"); catalogFile != "" {
			if err := cfg.LoadCatalog(catalogFile); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
		}
		restaurants, _ := cmd.Flags().GetInt("restaurants")
		weeks, _ := cmd.Flags().GetInt("weeks")
		perWeek, _ := cmd.Flags().GetInt("orders-per-week")
		latePayers, _ := cmd.Flags().GetFloat64("late-payers")
		reset, _ := cmd.Flags().GetBool("reset")

		ctx := cmd.Context()
		b, err := newBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		if reset {
			if err := b.seeder.DeleteAll(ctx); err != nil {
				return fmt.Errorf("reset store: %w", err)
			}
		}
		return seed(ctx, cmd, b, cfg, restaurants, factories.OrderHistory{
			Now:            time.Now().In(loc),
			Weeks:          weeks,
			OrdersPerWeek:  perWeek,
			LatePayerRatio: latePayers,
		})
	},
}

func seed(ctx context.Context, cmd *cobra.Command, b *backend, cfg *models.Config, n int, h factories.OrderHistory) error {
	gen := factories.NewGenerator(cfg.Seed, cfg.Catalog)
	restaurants := gen.Restaurants.CreateRestaurants(n)
	if err := b.seeder.BulkCreateRestaurants(ctx, restaurants); err != nil {
		return fmt.Errorf("create restaurants: %w", err)
	}

	bar := progressbar.NewOptions(len(restaurants),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("seeding orders"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	total := 0
	for _, r := range restaurants {
		orders := gen.Orders.CreateOrders(r, h)
		if err := b.seeder.BulkCreateOrders(ctx, orders); err != nil {
			return fmt.Errorf("create orders of %s: %w", r.ID, err)
		}
		total += len(orders)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d restaurants and %d orders\n", len(restaurants), total)
	return nil
}

func init() {
	seedCmd.Flags().Int("restaurants", 50, "number of restaurants to generate")
	seedCmd.Flags().Int("weeks", 8, "weeks of order history per restaurant")
	seedCmd.Flags().Int("orders-per-week", 30, "average orders per restaurant and week")
	seedCmd.Flags().Float64("late-payers", 0.2, "share of restaurants that leave commission unpaid")
	seedCmd.Flags().Bool("reset", false, "delete existing restaurants and orders first")
	seedCmd.Flags().String("catalog-file", "", "CSV catalogue: name,base_category,unit_type,unit_amount,is_menu")
}
