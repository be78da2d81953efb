package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodmarket/internal/ranking"
)

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Compare a menu item's price with the restaurants open right now",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, _ := cmd.Flags().GetString("restaurant")
		itemID, _ := cmd.Flags().GetString("item")
		if err := requireRestaurant(restaurantID); err != nil {
			return err
		}
		if itemID == "" {
			return fmt.Errorf("--item is required")
		}
		return run(cmd, func(ctx context.Context, b *backend) error {
			result, ok, err := b.svc.PriceIntelligence(ctx, restaurantID, itemID)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no comparable items at open restaurants")
				return nil
			}
			return printJSON(cmd, result)
		})
	},
}

var storefrontCmd = &cobra.Command{
	Use:   "storefront",
	Short: "List restaurants in storefront order",
	RunE: func(cmd *cobra.Command, args []string) error {
		sortFlag, _ := cmd.Flags().GetString("sort")
		mode, err := ranking.ParseSortMode(sortFlag)
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, b *backend) error {
			ranked, err := b.svc.Storefront(ctx, mode)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, r := range ranked {
				open := "closed"
				if r.Open {
					open = "open"
				}
				fmt.Fprintf(w, "%3d. %-32s %-6s rating %.1f  penalty %d  (%s)\n", i+1, r.Name, open, r.Rating, r.PenaltyLevel, r.ID)
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write invoice history as Parquet, locally or to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, _ := cmd.Flags().GetString("restaurant")
		return run(cmd, func(ctx context.Context, b *backend) error {
			location, err := b.svc.ExportInvoices(ctx, restaurantID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "invoices written to", location)
			return nil
		})
	},
}

func init() {
	intelCmd.Flags().String("restaurant", "", "restaurant id")
	intelCmd.Flags().String("item", "", "menu item id")
	storefrontCmd.Flags().String("sort", string(ranking.SortRecommended), "recommended, rating or name")
	exportCmd.Flags().String("restaurant", "", "restaurant id (all restaurants when empty)")
}
