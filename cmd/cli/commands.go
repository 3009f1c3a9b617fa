package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/infrastructure/postgres"
)

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var ownerID, ownerName string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open an account for an existing (--owner-id) or new (--owner-name) owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateAccountRequest{Owner: &dto.OwnerRef{ID: ownerID, Name: ownerName}}
			body, err := newAPIClient(opts).do(cmd.Context(), http.MethodPut, "/account", req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	create.Flags().StringVar(&ownerID, "owner-id", "", "existing owner ID")
	create.Flags().StringVar(&ownerName, "owner-name", "", "name of a new owner")
	create.MarkFlagsMutuallyExclusive("owner-id", "owner-name")
	create.MarkFlagsOneRequired("owner-id", "owner-name")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/account/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodDelete, "/account/"+url.PathEscape(args[0]), nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %s deactivated\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, get, deactivate)

	return cmd
}

func depositCmd(opts *options) *cobra.Command {
	return amountCmd(opts, "deposit", "Deposit money into an account")
}

func withdrawCmd(opts *options) *cobra.Command {
	return amountCmd(opts, "withdraw", "Withdraw money from an account")
}

func amountCmd(opts *options, op, short string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.AmountRequest{Amount: dto.Amount(args[1])}
			if _, err := req.ToDecimal(); err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			path := "/account/" + op + "/" + url.PathEscape(args[0])
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, path, req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s of %s on %s succeeded\n", op, args[1], args[0])
			return nil
		},
	}
}

func transferCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from-id> <to-id> <amount>",
		Short: "Transfer money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.TransferRequest{ToAccountID: args[1], Amount: dto.Amount(args[2])}
			body, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/account/transfer/"+url.PathEscape(args[0]), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

func recordsCmd(opts *options) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "records <account-id>",
		Short: "List transfers sent or received by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			body, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/account/"+url.PathEscape(args[0])+"/records?"+q.Encode(), nil)
			if err != nil {
				return err
			}

			var resp dto.ListRecordsResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-26s  %-12s  %-12s  %12s  %8s\n", "ID", "FROM", "TO", "AMOUNT", "CHARGE")
			for _, r := range resp.Records {
				fmt.Fprintf(out, "%-26s  %-12s  %-12s  %12s  %8s\n",
					r.ID, truncate(r.FromAccountID, 12), truncate(r.ToAccountID, 12),
					r.Amount.StringFixed(2), r.Charge.StringFixed(2))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func limitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "limits <account-id>",
		Short: "Show today's transfer limit usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/account/"+url.PathEscape(args[0])+"/limits", nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

// migrator is the part of postgres.Migrator the migrate commands use.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

var newMigrator = func(databaseURL, path string) migrator {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return postgres.NewMigrator(databaseURL, path, log)
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newMigrator(databaseURL, path).Up()
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newMigrator(databaseURL, path).Down()
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := newMigrator(databaseURL, path).Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)

	return cmd
}

func printJSON(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, err = w.Write(body)
		return err
	}

	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)

	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
