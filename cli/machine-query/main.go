package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

/*
Machine info query tool.

Asks a running machineinfo service for the reconciled record of a machine or
for its active cross-border alerts and prints the JSON answer.

Usage:
  machine-query get <model> <serial> [--view distributor|trunk] [--org <id>]
  machine-query cross-border <model> <serial> --org <id>

Global flags:
  --server string   service address (default "localhost:8080")
  --user string     caller identity sent as X-User-Email
  --api-key string  key sent as X-API-Key
  --timeout int     request timeout in seconds (default 5)

Example

```
./machine-query get PC210LC-11 A12345 --view trunk --user ops@example.com
```
*/

type options struct {
	server  string
	user    string
	apiKey  string
	timeout int
}

func (o *options) client() *client {
	timeout := o.timeout
	if timeout <= 0 {
		timeout = 5
	}
	return newClient(o.server, o.user, o.apiKey, time.Duration(timeout)*time.Second)
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "machine-query",
		Short:         "Query the machineinfo service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&opts.server, "server", "localhost:8080", "service address")
	cmd.PersistentFlags().StringVar(&opts.user, "user", "", "caller identity sent as X-User-Email")
	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "key sent as X-API-Key")
	cmd.PersistentFlags().IntVar(&opts.timeout, "timeout", 5, "request timeout in seconds")

	cmd.AddCommand(newGetCommand(opts), newCrossBorderCommand(opts))
	return cmd
}

func newGetCommand(opts *options) *cobra.Command {
	var view, org string

	cmd := &cobra.Command{
		Use:     "get <model> <serial>",
		Short:   "Print the reconciled record of a machine",
		Args:    cobra.ExactArgs(2),
		Example: "  machine-query get PC210LC-11 A12345 --view trunk",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().getMachine(cmd.Context(), args[0], args[1], view, org)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}
	cmd.Flags().StringVar(&view, "view", "", "distributor or trunk")
	cmd.Flags().StringVar(&org, "org", "", "organization id the caller acts for")
	return cmd
}

func newCrossBorderCommand(opts *options) *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "cross-border <model> <serial>",
		Short: "Print the active cross-border alerts of a machine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().getCrossBorderAlerts(cmd.Context(), args[0], args[1], org)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization id that triggered the alerts")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func main() {
	if err := newRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
