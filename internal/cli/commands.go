// Package cli holds the ledgerctl subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/services"
	"github.com/SscSPs/money_tracker_ledger/internal/platform/bootstrap"
	"github.com/SscSPs/money_tracker_ledger/internal/platform/config"
	"github.com/SscSPs/money_tracker_ledger/internal/utils"
	"github.com/google/subcommands"
)

// StorageOpener opens the configured store.
type StorageOpener func(ctx context.Context, cfg *config.Config, migrate bool) (*bootstrap.Storage, error)

// Env is what every subcommand runs against.
type Env struct {
	LoadConfig  func() (*config.Config, error)
	OpenStorage StorageOpener
	Out         io.Writer
	Err         io.Writer
}

// DefaultEnv reads the environment and writes to the process streams.
func DefaultEnv() *Env {
	return &Env{
		LoadConfig:  config.LoadConfig,
		OpenStorage: bootstrap.OpenStorage,
		Out:         os.Stdout,
		Err:         os.Stderr,
	}
}

// Commands lists every ledgerctl subcommand.
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&migrateCmd{env: env},
		&verifyCmd{env: env},
		&tokenCmd{env: env},
	}
}

type migrateCmd struct {
	env *Env
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending schema migrations to the configured store" }
func (*migrateCmd) Usage() string {
	return `ledgerctl migrate

  Applies every pending migration for STORAGE_DRIVER and exits.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.env.LoadConfig()
	if err != nil {
		fmt.Fprintln(c.env.Err, err)
		return subcommands.ExitFailure
	}
	storage, err := c.env.OpenStorage(ctx, cfg, true)
	if err != nil {
		fmt.Fprintln(c.env.Err, err)
		return subcommands.ExitFailure
	}
	storage.Close()
	fmt.Fprintf(c.env.Out, "%s store is up to date\n", cfg.StorageDriver)
	return subcommands.ExitSuccess
}

type verifyCmd struct {
	env   *Env
	owner string
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "replay an owner's events and compare them with stored balances" }
func (*verifyCmd) Usage() string {
	return `ledgerctl verify -owner <owner_id>

  Prints the audit report as JSON. Exits with status 1 when any
  stored balance differs from its replayed value.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner whose ledger is audited (required).")
}

func (c *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(c.env.Err, "-owner is required")
		return subcommands.ExitUsageError
	}
	cfg, err := c.env.LoadConfig()
	if err != nil {
		fmt.Fprintln(c.env.Err, err)
		return subcommands.ExitFailure
	}
	storage, err := c.env.OpenStorage(ctx, cfg, false)
	if err != nil {
		fmt.Fprintln(c.env.Err, err)
		return subcommands.ExitFailure
	}
	defer storage.Close()

	ledger := services.NewLedgerService(storage.Repos.TxManager)
	report, err := ledger.AuditBalances(ctx, c.owner)
	if report != nil {
		enc := json.NewEncoder(c.env.Out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			fmt.Fprintln(c.env.Err, encErr)
			return subcommands.ExitFailure
		}
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInvariantViolation) && report != nil {
			fmt.Fprintf(c.env.Err, "%d account(s) out of balance\n", len(report.Mismatches()))
		} else {
			fmt.Fprintln(c.env.Err, err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	env    *Env
	owner  string
	expiry time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint a bearer token for an owner" }
func (*tokenCmd) Usage() string {
	return `ledgerctl token -owner <owner_id> [-expiry 24h]

  Signs a token with JWT_SECRET and JWT_ISSUER, for local testing.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner id placed in the token subject (required).")
	f.DurationVar(&c.expiry, "expiry", 24*time.Hour, "Token lifetime.")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(c.env.Err, "-owner is required")
		return subcommands.ExitUsageError
	}
	cfg, err := c.env.LoadConfig()
	if err != nil {
		fmt.Fprintln(c.env.Err, err)
		return subcommands.ExitFailure
	}
	token, err := utils.GenerateJWT(c.owner, cfg.JWTSecret, c.expiry, cfg.JWTIssuer)
	if err != nil {
		fmt.Fprintln(c.env.Err, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(c.env.Out, token)
	return subcommands.ExitSuccess
}
