package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

func (c *cli) accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <owner>",
		Short: "List an owner's accounts and total balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.ledger(cmd.Context())
			if err != nil {
				return err
			}
			accounts, err := svc.AccountsByOwner(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No accounts found")
				return nil
			}
			fmt.Fprintf(out, "%-12s %-10s %-10s %15s\n", "ID", "Type", "Number", "Balance")
			fmt.Fprintln(out, strings.Repeat("-", 50))
			for _, acc := range accounts {
				fmt.Fprintf(out, "%-12s %-10s %-10s %15s\n", acc.ID, acc.Type, acc.DisplayNumber, ledger.FormatAmount(acc.Balance))
			}
			total, err := svc.TotalBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-34s %15s\n", "Total", ledger.FormatAmount(total))
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <owner>",
		Short: "Show an owner's transactions, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.ledger(cmd.Context())
			if err != nil {
				return err
			}
			txns, err := svc.TransactionsForOwner(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit > 0 {
				txns = lo.Slice(txns, 0, limit)
			}
			printTransactions(cmd.OutOrStdout(), txns)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the most recent entries")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "summary <owner>",
		Short: "Show balances, monthly spending and recent activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now().UTC()
			if month != "" {
				var err error
				if ref, err = time.Parse("2006-01", month); err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
				}
			}
			svc, err := c.ledger(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := svc.Summary(cmd.Context(), args[0], ref)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Owner:            %s\n", summary.OwnerID)
			fmt.Fprintf(out, "Accounts:         %d\n", len(summary.Accounts))
			fmt.Fprintf(out, "Total balance:    %s\n", ledger.FormatAmount(summary.TotalBalance))
			fmt.Fprintf(out, "Spent in %s: %s\n", ref.Format("2006-01"), ledger.FormatAmount(summary.MonthlySpending))
			fmt.Fprintln(out)
			printTransactions(out, summary.Recent)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month for the spending figure as YYYY-MM, defaults to the current month")
	return cmd
}

func (c *cli) transferCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move money between accounts; use 'external' for deposits and withdrawals",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := ledger.ParseAmount(args[2])
			if err != nil {
				return err
			}
			svc, err := c.ledger(cmd.Context())
			if err != nil {
				return err
			}
			txn, err := svc.Transfer(cmd.Context(), args[0], args[1], amount, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s -> %s %s\n",
				txn.ID, txn.Status, txn.FromAccountID, txn.ToAccountID, ledger.FormatAmount(txn.Magnitude()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free text")
	return cmd
}

func (c *cli) reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <owner>",
		Short: "Rebuild balances from the transaction log and report drift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.ledger(cmd.Context())
			if err != nil {
				return err
			}
			recs, err := svc.ReconcileOwner(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			drifted := 0
			fmt.Fprintf(out, "%-12s %15s %15s %8s\n", "ID", "Balance", "Rebuilt", "Entries")
			for _, rec := range recs {
				mark := ""
				if !rec.Consistent() {
					drifted++
					mark = "  DRIFT " + rec.Drift.StringFixed(ledger.MoneyPlaces)
				}
				fmt.Fprintf(out, "%-12s %15s %15s %8d%s\n", rec.AccountID,
					ledger.FormatAmount(rec.Balance), ledger.FormatAmount(rec.Reconstructed), rec.Entries, mark)
			}
			if drifted > 0 {
				return fmt.Errorf("%d account(s) drifted", drifted)
			}
			return nil
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (postgres backend only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Backend != config.BackendPostgres {
				return errors.New("migrate needs --backend postgres")
			}
			db, err := sqlconfig.Open(cmd.Context(), c.cfg.PostgresDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := sqlconfig.Migrate(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d\n", res.PreMigrationVersion, res.PostMigrationVersion)
			return nil
		},
	}
}

func printTransactions(out io.Writer, txns []ledger.Transaction) {
	if len(txns) == 0 {
		fmt.Fprintln(out, "No transactions found")
		return
	}
	fmt.Fprintf(out, "%-10s %-24s %-9s %-10s %14s\n", "Date", "Description", "Kind", "Status", "Amount")
	fmt.Fprintln(out, strings.Repeat("-", 71))
	for _, txn := range txns {
		desc := txn.Description
		if len(desc) > 24 {
			desc = desc[:24]
		}
		fmt.Fprintf(out, "%-10s %-24s %-9s %-10s %14s\n",
			txn.Timestamp.Format("2006-01-02"), desc, txn.Kind, txn.Status, ledger.FormatAmount(txn.Amount))
	}
}
