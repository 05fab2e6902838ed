package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/auth"
	"github.com/iho/fundledger/internal/infrastructure/logger"
	"github.com/iho/fundledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fundledger-cli",
		Short:         "FundLedger CLI tool",
		Long:          `A command line interface for interacting with the FundLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FundLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("FUNDLEDGER_TOKEN"), "Bearer token for mutating calls")

	rootCmd.AddCommand(
		newFundCmd(),
		newWithdrawCmd(),
		newLedgerCmd(),
		newFunderCmd(),
		newContributionCmd(),
		newConvertCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)

	return rootCmd
}

func newFundCmd() *cobra.Command {
	var whole bool

	cmd := &cobra.Command{
		Use:   "fund <funder> <amount>",
		Short: "Deposit native value on behalf of a funder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := args[1]
			if whole {
				wei, err := domain.NativeFromWhole(amount)
				if err != nil {
					return err
				}
				amount = wei.String()
			}

			return doRequest(http.MethodPost, "/api/v1/fund", map[string]string{
				"funder": args[0],
				"amount": amount,
			})
		},
	}
	cmd.Flags().BoolVar(&whole, "whole", false, "Amount is in whole native units instead of the smallest unit")

	return cmd
}

func newWithdrawCmd() *cobra.Command {
	var cheaper bool

	cmd := &cobra.Command{
		Use:   "withdraw <caller>",
		Short: "Withdraw the whole pool to the owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/withdraw"
			if cheaper {
				path += "/cheaper"
			}
			return doRequest(http.MethodPost, path, map[string]string{"caller": args[0]})
		},
	}
	cmd.Flags().BoolVar(&cheaper, "cheaper", false, "Use the snapshot-based withdraw variant")

	return cmd
}

func newLedgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/ledger", nil)
		},
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency()
		},
	})

	return ledgerCmd
}

func newFunderCmd() *cobra.Command {
	var limit, offset int

	funderCmd := &cobra.Command{
		Use:   "funder [index]",
		Short: "Show a funder by index, or list funders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return doRequest(http.MethodGet, "/api/v1/funders/"+url.PathEscape(args[0]), nil)
			}
			return doRequest(http.MethodGet, fmt.Sprintf("/api/v1/funders?limit=%d&offset=%d", limit, offset), nil)
		},
	}
	funderCmd.Flags().IntVar(&limit, "limit", 50, "Page size when listing")
	funderCmd.Flags().IntVar(&offset, "offset", 0, "Page offset when listing")

	funderCmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Number of entries in the funder list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/funders/count", nil)
		},
	})

	return funderCmd
}

func newContributionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contribution <address>",
		Short: "Show the recorded contribution of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/contributions/"+url.PathEscape(args[0]), nil)
		},
	}
}

func newConvertCmd() *cobra.Command {
	var (
		offline  bool
		price    string
		decimals int32
	)

	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert a native amount to the reference currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !offline {
				return doRequest(http.MethodGet, "/api/v1/conversion?amount="+url.QueryEscape(args[0]), nil)
			}

			result, err := convertOffline(args[0], price, decimals)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Convert locally with --price and --decimals")
	cmd.Flags().StringVar(&price, "price", "200000000000", "Quote price used with --offline")
	cmd.Flags().Int32Var(&decimals, "decimals", 8, "Quote decimals used with --offline")

	return cmd
}

type conversion struct {
	Amount          decimal.Decimal `json:"amount"`
	ReferenceAmount decimal.Decimal `json:"reference_amount"`
	MeetsMinimum    bool            `json:"meets_minimum"`
}

func convertOffline(amount, price string, decimals int32) (*conversion, error) {
	native, err := domain.ParseNativeAmount(amount)
	if err != nil {
		return nil, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}

	converted := domain.ConversionRate(native, domain.PriceQuote{Price: p, Decimals: decimals})

	return &conversion{
		Amount:          native,
		ReferenceAmount: converted,
		MeetsMinimum:    domain.MeetsMinimum(converted, domain.MinimumReferenceAmount),
	}, nil
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	migrator := func() *postgres.Migrator {
		return postgres.NewMigrator(databaseURL, migrationsPath, logger.New(logger.Config{Format: "console", Service: "fundledger-cli"}))
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator().Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator().Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := migrator().Version()
				if err != nil {
					return err
				}
				fmt.Printf("Version: %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return migrateCmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Issue a bearer token whose subject is the given address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}

			signed, err := auth.NewJWTManager(secret, ttl).Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Println(signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func doRequest(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimRight(baseURL, "/")+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (status: %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(result)
	return nil
}

func checkConsistency() error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/api/v1/ledger/consistency")
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("consistency check FAILED (status: %d)\nresponse: %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Consistency check PASSED\n")
	if consistent, ok := result["consistent"].(bool); ok {
		fmt.Printf("Consistent: %v\n", consistent)
	}
	fmt.Printf("Held balance: %v\n", result["held_balance"])
	fmt.Printf("Status: %s\n", result["status"])

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
