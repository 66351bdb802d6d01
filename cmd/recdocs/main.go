package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"recdocs/internal/app"
	"recdocs/internal/config"
	"recdocs/internal/docs"
)

func main() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var (
	recordFlag          string
	opportunityFlag     string
	loanApplicationFlag string
	verboseFlag         bool
)

// newApp reads the config and creates a RecDocsApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Attach", "Serve").
func newApp(ctx context.Context, operation string) (*app.RecDocsApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewRecDocsApp(ctx, cfg, operation, app.Options{Out: os.Stdout, Verbose: verboseFlag})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// resolveOwner picks the owning record from the owner flags, falling back to RECDOCS_RECORD.
func resolveOwner() (docs.OwnerRef, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return "", fmt.Errorf("getting defaults: %w", err)
	}
	owner, ok := docs.OwnerCandidates{
		RecordID:          recordFlag,
		OpportunityID:     opportunityFlag,
		LoanApplicationID: loanApplicationFlag,
	}.Resolve()
	if !ok {
		owner, ok = docs.ResolveOwnerRef(defaults["record"])
	}
	if !ok {
		return "", errors.New("no owning record: pass --record, --opportunity or --loan-application")
	}
	return owner, nil
}

// withApp runs fn with a fresh app and records a failure on the operation.
func withApp(cmd *cobra.Command, operation string, fn func(ctx context.Context, a *app.RecDocsApp) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, operation)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		a.Fail(err)
		return err
	}
	return nil
}

// withController is withApp for commands that act on one owning record.
// Activation failures are returned unless allowUnresolved is set.
func withController(cmd *cobra.Command, operation string, allowUnresolved bool, fn func(ctx context.Context, c *docs.Controller) error) error {
	owner, err := resolveOwner()
	if err != nil {
		return err
	}
	return withApp(cmd, operation, func(ctx context.Context, a *app.RecDocsApp) error {
		c, err := a.Open(ctx, owner)
		if err != nil && (c == nil || !allowUnresolved) {
			return fmt.Errorf("opening record %s: %w", owner, err)
		}
		return fn(ctx, c)
	})
}

var rootCmd = &cobra.Command{
	Use:           "recdocs",
	Short:         "Attach categorized documents to business records",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Layout:   %s\n", cfg.Layout.Type)
		fmt.Printf("Staging:  %s (encrypted: %v)\n", cfg.Staging.Type, cfg.Staging.Encrypt)
		if cfg.Backend.Type == "remote" {
			fmt.Printf("Backend:  remote %s\n", cfg.Backend.URL)
		} else {
			fmt.Printf("Backend:  local (vault %s, database %s)\n", cfg.Vault.Type, cfg.Database.Type)
		}
		fmt.Printf("Workflow: upload failure %s\n", cfg.Workflow.UploadFailure)
		return nil
	},
}

// vault command
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage vault",
}

var vaultInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Verify the configured storage is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ValidateSetup", func(ctx context.Context, a *app.RecDocsApp) error {
			if err := a.ValidateSetup(ctx); err != nil {
				return fmt.Errorf("storage not ready: %w", err)
			}
			fmt.Println("Storage is ready.")
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&recordFlag, "record", "", "Owning record id")
	rootCmd.PersistentFlags().StringVar(&opportunityFlag, "opportunity", "", "Owning opportunity id")
	rootCmd.PersistentFlags().StringVar(&loanApplicationFlag, "loan-application", "", "Owning loan application id")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Also write log records to stderr")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	vaultCmd.AddCommand(vaultInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(vaultCmd)
}
