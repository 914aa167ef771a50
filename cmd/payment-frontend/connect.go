package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/payment-frontend/internal/app"
	"github.com/vango-dev/payment-frontend/internal/declarations/paymentbackend"
	"github.com/vango-dev/payment-frontend/pkg/page"
)

func connectCmd(flags *globalFlags, build builderFunc) *cobra.Command {
	var calls []string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Bootstrap headlessly and connect once",
		Long: `Run the page bootstrap without serving it: build the connection,
log every state transition, mount the app into the page shell, then
connect once. Each --call invokes a canister method afterwards.

Methods:
  get_transactions
  get_transaction_value:<hash>
  get_latest_external_transfer:<from block>

Examples:
  payment-frontend connect
  payment-frontend connect --call get_transactions
  payment-frontend connect --call get_latest_external_transfer:4200000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(cmd.OutOrStdout())

			tmpl, err := page.LoadTemplate(cfg.Page.Shell)
			if err != nil {
				return err
			}
			builder, err := build(cfg, logger, nil)
			if err != nil {
				return err
			}

			c, root, err := app.Bootstrap(tmpl.New(), builder, app.WithLogger(logger))
			if err != nil {
				return err
			}
			defer root.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := c.Actions.Connect(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, root.HTML())

			methods := paymentbackend.NewMethods(c.Actions)
			for _, call := range calls {
				method, arg := parseCall(call)
				reply, err := runCall(ctx, methods, method, arg)
				if err != nil {
					return err
				}
				encoded, err := json.Marshal(reply)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", method, encoded)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&calls, "call", nil, "Canister method to call after connecting (method[:arg])")

	return cmd
}

// parseCall splits "method:arg" into the method name and its argument.
func parseCall(s string) (method, arg string) {
	method, arg, _ = strings.Cut(s, ":")
	return method, arg
}

// runCall invokes one canister method with its argument converted to the
// method's Candid type.
func runCall(ctx context.Context, m paymentbackend.Methods, method, arg string) (any, error) {
	switch method {
	case paymentbackend.MethodGetTransactions:
		if arg != "" {
			return nil, fmt.Errorf("%s takes no argument", method)
		}
		return m.Transactions(ctx)
	case paymentbackend.MethodGetTransactionValue:
		if arg == "" {
			return nil, fmt.Errorf("%s needs a transaction hash", method)
		}
		return m.TransactionValue(ctx, arg)
	case paymentbackend.MethodGetLatestExternalTransfer:
		block, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s needs a block number: %w", method, err)
		}
		return m.LatestExternalTransfer(ctx, block)
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}
