// Command payment-frontend serves the payment dApp front end.
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/payment-frontend/internal/config"
	"github.com/vango-dev/payment-frontend/internal/declarations/paymentbackend"
	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/actor"
	"github.com/vango-dev/payment-frontend/pkg/store"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// builderFunc creates the lazy canister connection for a loaded config.
type builderFunc func(cfg *config.Config, logger *slog.Logger, obs actor.CallObserver) (store.Builder, error)

// canisterBuilder connects to the payment_backend canister through the IC
// agent described by cfg.
func canisterBuilder(cfg *config.Config, logger *slog.Logger, obs actor.CallObserver) (store.Builder, error) {
	agentConfig := cfg.AgentConfig()
	agentConfig.Logger = logger
	agentConfig.Observer = obs
	agent, err := actor.NewAgent(agentConfig)
	if err != nil {
		return nil, err
	}
	return paymentbackend.Builder(cfg.CanisterID(), paymentbackend.WithAgent(agent)), nil
}

func newRootCmd(out io.Writer) *cobra.Command {
	return newRootCmdWith(out, canisterBuilder)
}

func newRootCmdWith(out io.Writer, build builderFunc) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "payment-frontend",
		Short: "Front end for the payment canister",
		Long: `payment-frontend serves the payment dApp front end.

Pages are rendered on the server and kept live over a WebSocket.
The connection to the payment_backend canister is created lazily
on the first Connect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file (default: ./"+config.DefaultFileName+" if present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		serveCmd(flags, build),
		connectCmd(flags, build),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the config file and environment, then applies the
// global flags that were set.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	return cfg, cfg.Validate()
}

// printError prints coded errors with their suggestion.
func printError(w io.Writer, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}
