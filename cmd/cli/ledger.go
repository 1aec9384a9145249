package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iho/backoffice/internal/adapter/http/dto"
)

var errInconsistentLedger = errors.New("ledger audit found discrepancies")

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var asJSON bool
	audit := &cobra.Command{
		Use:   "audit",
		Short: "Recompute expected balances and check transfer pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, _, err := opts.call(http.MethodGet, "/api/v1/ledger/audit", http.StatusConflict)
			if err != nil {
				return err
			}

			var report dto.AuditReportResponse
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, report); err != nil {
					return err
				}
				if !report.Consistent {
					return errInconsistentLedger
				}
				return nil
			}

			fmt.Fprintf(out, "Accounts checked: %d\n", report.AccountsChecked)
			fmt.Fprintf(out, "Transfers checked: %d\n", report.TransfersChecked)
			for _, d := range report.Balances {
				fmt.Fprintf(out, "DRIFT account=%d recorded=%s expected=%s repaired=%t\n",
					d.AccountID, d.RecordedBalance, d.ExpectedBalance, d.Repaired)
			}
			for _, d := range report.Transfers {
				fmt.Fprintf(out, "ASYMMETRIC transfer=%s legs=%d reason=%q\n", d.Token, d.Legs, d.Reason)
			}

			if !report.Consistent {
				return errInconsistentLedger
			}
			fmt.Fprintln(out, "Ledger audit PASSED")
			return nil
		},
	}
	audit.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")

	cmd.AddCommand(audit)
	return cmd
}

const recomputePageSize = 100

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var all bool
	recompute := &cobra.Command{
		Use:   "recompute [account-id]",
		Short: "Recompute account balances from their movements",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass an account id or --all, not both")
			}
			if !all && len(args) != 1 {
				return errors.New("an account id is required unless --all is set")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, 1)
			if all {
				var err error
				if ids, err = listAccountIDs(opts); err != nil {
					return err
				}
			} else {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid account id %q", args[0])
				}
				ids = append(ids, id)
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				body, _, err := opts.call(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%d/recompute", id))
				if err != nil {
					return fmt.Errorf("recompute account %d: %w", id, err)
				}
				var account dto.AccountResponse
				if err := json.Unmarshal(body, &account); err != nil {
					return fmt.Errorf("failed to parse response: %w", err)
				}
				fmt.Fprintf(out, "account=%d balance=%s\n", account.ID, account.CurrentBalance)
			}
			return nil
		},
	}
	recompute.Flags().BoolVar(&all, "all", false, "Recompute every account")

	cmd.AddCommand(recompute)
	return cmd
}

func listAccountIDs(opts *options) ([]int64, error) {
	var ids []int64
	for offset := 0; ; offset += recomputePageSize {
		body, _, err := opts.call(http.MethodGet, fmt.Sprintf("/api/v1/accounts/?limit=%d&offset=%d", recomputePageSize, offset))
		if err != nil {
			return nil, err
		}

		var page dto.ListAccountsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		for _, a := range page.Accounts {
			ids = append(ids, a.ID)
		}
		if len(page.Accounts) < recomputePageSize {
			return ids, nil
		}
	}
}
