package experiments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/client"
	"gradient-sdk/cmd/server"
	"gradient-sdk/repositories"
)

// newClient is replaced in tests
var newClient = func() *client.ExperimentsClient {
	return client.NewExperimentsClientFromConfig(server.Config, server.Logger())
}

func NewExperimentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experiments",
		Aliases: []string{"experiment", "exp"},
		Short:   "Create, run and inspect experiments",
	}
	cmd.AddCommand(
		newSubmitCommand(repositories.SubmitCreate, "Create an experiment without starting it"),
		newSubmitCommand(repositories.SubmitRun, "Create and start an experiment"),
		newStateCommand("start", "Start an experiment", func(c *client.ExperimentsClient) stateFunc { return c.Start }),
		newStateCommand("stop", "Stop a running experiment", func(c *client.ExperimentsClient) stateFunc { return c.Stop }),
		newGetCommand(),
		newListCommand(),
		newDeleteCommand(),
		newLogsCommand(),
	)
	return cmd
}

// signalContext: context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

func printJSON(out io.Writer, obj interface{}) error {
	content, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(content))
	return err
}

/*********************
 * Submit
 *********************/
func newSubmitCommand(mode repositories.SubmitMode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(mode) + " [singlenode|multinode|mpi]",
		Short: short,
	}

	single := &cobra.Command{
		Use:   "singlenode",
		Short: "Single node experiment",
		Args:  cobra.NoArgs,
	}
	singleOpts := NewSingleNodeOption(single.Flags())
	single.RunE = func(cmd *cobra.Command, args []string) error {
		return submit(cmd, func(ctx context.Context, c *client.ExperimentsClient) (string, error) {
			return c.SubmitSingleNode(ctx, singleOpts.Complete(), mode)
		})
	}

	multi := &cobra.Command{
		Use:   "multinode",
		Short: "Multi-node experiment with worker and parameter server groups",
		Args:  cobra.NoArgs,
	}
	multiOpts := NewMultiNodeOption(multi.Flags())
	multi.RunE = func(cmd *cobra.Command, args []string) error {
		params, err := multiOpts.Complete()
		if err != nil {
			return err
		}
		return submit(cmd, func(ctx context.Context, c *client.ExperimentsClient) (string, error) {
			return c.SubmitMultiNode(ctx, params, mode)
		})
	}

	mpi := &cobra.Command{
		Use:   "mpi",
		Short: "MPI multi-node experiment with worker and master groups",
		Args:  cobra.NoArgs,
	}
	mpiOpts := NewMpiMultiNodeOption(mpi.Flags())
	mpi.RunE = func(cmd *cobra.Command, args []string) error {
		return submit(cmd, func(ctx context.Context, c *client.ExperimentsClient) (string, error) {
			return c.SubmitMpiMultiNode(ctx, mpiOpts.Complete(), mode)
		})
	}

	cmd.AddCommand(single, multi, mpi)
	return cmd
}

func submit(cmd *cobra.Command, f func(ctx context.Context, c *client.ExperimentsClient) (string, error)) error {
	ctx, cancel := signalContext()
	defer cancel()
	handle, err := f(ctx, newClient())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), handle)
	return nil
}

/*********************
 * Lifecycle
 *********************/
type stateFunc func(ctx context.Context, experimentID string, useVPC bool) error

func newStateCommand(use, short string, method func(c *client.ExperimentsClient) stateFunc) *cobra.Command {
	var useVPC bool
	cmd := &cobra.Command{
		Use:   use + " EXPERIMENT_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return method(newClient())(ctx, args[0], useVPC)
		},
	}
	cmd.Flags().BoolVar(&useVPC, "vpc", false, "Use the VPC endpoint.")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EXPERIMENT_ID",
		Short: "Delete an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return newClient().Delete(ctx, args[0])
		},
	}
}

/*********************
 * Queries
 *********************/
func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get EXPERIMENT_ID",
		Short: "Print one experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			e, err := newClient().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
}

type listOutput struct {
	Experiments []gradientv1.Experiment `json:"experiments"`
	Meta        *gradientv1.ListMeta    `json:"meta,omitempty"`
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments",
		Args:  cobra.NoArgs,
	}
	opts := NewListOption(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		experiments, meta, err := newClient().List(ctx, opts.Filter)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), listOutput{Experiments: experiments, Meta: meta})
	}
	return cmd
}

func newLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs EXPERIMENT_ID",
		Short: "Print the log of an experiment",
		Args:  cobra.ExactArgs(1),
	}
	opts := NewLogsOption(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		out := cmd.OutOrStdout()
		c := newClient()
		if !opts.Follow {
			rows, err := c.Logs(ctx, args[0], opts.Line, opts.Limit)
			if err != nil {
				return err
			}
			for _, row := range rows {
				if row.IsEOF() {
					break
				}
				fmt.Fprintf(out, "%d\t%s\n", row.Line, row.Message)
			}
			return nil
		}
		it := c.YieldLogs(args[0], opts.Line, opts.Limit)
		for {
			row, err := it.Next(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\t%s\n", row.Line, row.Message)
		}
	}
	return cmd
}
