package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodmarket/internal/accounting"
)

var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Commission summary of the current week for a restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, _ := cmd.Flags().GetString("restaurant")
		if err := requireRestaurant(restaurantID); err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, b *backend) error {
			summary, err := b.svc.WeeklyCommission(ctx, restaurantID)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Unpaid weeks and penalty level of a restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, _ := cmd.Flags().GetString("restaurant")
		if err := requireRestaurant(restaurantID); err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, b *backend) error {
			status, err := b.svc.AccountingStatus(ctx, restaurantID)
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		})
	},
}

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Weekly invoice history of a restaurant, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, _ := cmd.Flags().GetString("restaurant")
		archive, _ := cmd.Flags().GetBool("archive")
		archived, _ := cmd.Flags().GetBool("archived")
		if err := requireRestaurant(restaurantID); err != nil {
			return err
		}
		if archive && archived {
			return fmt.Errorf("--archive and --archived are mutually exclusive")
		}
		return run(cmd, func(ctx context.Context, b *backend) error {
			var (
				history []accounting.InvoiceRecord
				err     error
			)
			switch {
			case archive:
				history, err = b.svc.ArchiveInvoices(ctx, restaurantID)
			case archived:
				history, err = b.svc.ArchivedInvoices(ctx, restaurantID)
			default:
				history, err = b.svc.InvoiceHistory(ctx, restaurantID)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, history)
		})
	},
}

var markPaidCmd = &cobra.Command{
	Use:   "mark-paid",
	Short: "Mark the commission of one week as paid",
	Example: `  foodmarket mark-paid --restaurant r1 --week 2024-03-04
  foodmarket mark-paid --restaurant r1 --week 2024-03-06   # any day of the week works`,
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, _ := cmd.Flags().GetString("restaurant")
		weekFlag, _ := cmd.Flags().GetString("week")
		if err := requireRestaurant(restaurantID); err != nil {
			return err
		}
		week, err := accounting.ParseWeekKey(weekFlag)
		if err != nil {
			return fmt.Errorf("--week: %w", err)
		}
		return run(cmd, func(ctx context.Context, b *backend) error {
			marked, err := b.svc.MarkPeriodPaid(ctx, restaurantID, week)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d orders paid for week %s\n", len(marked), week)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{commissionCmd, statusCmd, invoicesCmd, markPaidCmd} {
		c.Flags().String("restaurant", "", "restaurant id")
	}
	invoicesCmd.Flags().Bool("archive", false, "store the history in the invoice archive")
	invoicesCmd.Flags().Bool("archived", false, "read the history back from the invoice archive")
	markPaidCmd.Flags().String("week", "", "any date (YYYY-MM-DD) inside the week to settle")
}
