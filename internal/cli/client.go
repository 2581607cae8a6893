package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/api"
	grpcadapter "github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/seedfile"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	grpcpool "github.com/JoeShih716/go-account-statement/pkg/grpc"
)

// errRejected 伺服器以業務規則拒絕交易
var errRejected = errors.New("transaction rejected")

// clientFlags client 子命令共用的連線參數
type clientFlags struct {
	target  string
	timeout time.Duration
}

// connect 建立 RPC 客戶端，回傳的 close 需在結束時呼叫
func (a *app) connect(f *clientFlags) (*grpcadapter.Client, func(), error) {
	target := f.target
	if target == "" {
		target = a.cfg.Client.Target
	}
	pool := grpcpool.NewPool(
		grpcpool.WithInterceptor(grpcpool.LoggingClientInterceptor(a.logger)),
		grpcpool.WithKeepalive(a.cfg.Client.Keepalive),
	)
	conn, err := pool.GetConnection(target)
	if err != nil {
		return nil, nil, err
	}
	return grpcadapter.NewClient(conn), func() { _ = pool.Close() }, nil
}

func (a *app) callContext(cmd *cobra.Command, f *clientFlags) (context.Context, context.CancelFunc) {
	timeout := f.timeout
	if timeout <= 0 {
		timeout = a.cfg.Client.Timeout
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func newClientCommand(a *app) *cobra.Command {
	f := &clientFlags{}
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Talk to a running ledger server over gRPC",
	}
	cmd.PersistentFlags().StringVar(&f.target, "target", "", "server address (defaults to client.target)")
	cmd.PersistentFlags().DurationVar(&f.timeout, "timeout", 0, "per call timeout (defaults to client.timeout)")

	cmd.AddCommand(
		newMutationCommand(a, f, "deposit", "Deposit an amount", (*grpcadapter.Client).Deposit),
		newMutationCommand(a, f, "withdraw", "Withdraw an amount", (*grpcadapter.Client).Withdraw),
		newWithdrawAllCommand(a, f),
		newBalanceCommand(a, f),
		newRemoteStatementCommand(a, f),
		newExportCommand(a, f),
		newBenchCommand(a, f),
	)
	return cmd
}

type mutationCall func(*grpcadapter.Client, context.Context, decimal.Decimal, string, time.Time, ...grpc.CallOption) (api.MutationReply, error)

// parseAt 解析 --at，空字串表示由伺服器決定
func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return seedfile.ParseTimestamp(s)
}

func newMutationCommand(a *app, f *clientFlags, use, short string, call mutationCall) *cobra.Command {
	var description, at string
	cmd := &cobra.Command{
		Use:   use + " AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			ts, err := parseAt(at)
			if err != nil {
				return err
			}
			client, closeConn, err := a.connect(f)
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := a.callContext(cmd, f)
			defer cancel()
			reply, err := call(client, ctx, amount, description, ts)
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")
	cmd.Flags().StringVar(&at, "at", "", "transaction time (RFC3339 or YYYY-MM-DD HH:MM), defaults to now")
	return cmd
}

func newWithdrawAllCommand(a *app, f *clientFlags) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "withdraw-all",
		Short: "Withdraw the whole balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := parseAt(at)
			if err != nil {
				return err
			}
			client, closeConn, err := a.connect(f)
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := a.callContext(cmd, f)
			defer cancel()
			reply, err := client.WithdrawAll(ctx, ts)
			if err != nil {
				return err
			}
			return printReply(cmd.OutOrStdout(), reply)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "transaction time (RFC3339 or YYYY-MM-DD HH:MM), defaults to now")
	return cmd
}

// printReply 印出結果訊息與最新餘額，被拒絕時回傳 errRejected
func printReply(w io.Writer, reply api.MutationReply) error {
	fmt.Fprintln(w, reply.Outcome.Message)
	fmt.Fprintf(w, "Balance: %s %s\n", domain.FormatAmount(reply.Balance), reply.Currency)
	if !reply.Accepted {
		return fmt.Errorf("%w: %s", errRejected, reply.Outcome.Status)
	}
	return nil
}

func newBalanceCommand(a *app, f *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeConn, err := a.connect(f)
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := a.callContext(cmd, f)
			defer cancel()
			balance, err := client.Balance(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", domain.FormatAmount(balance), domain.CurrencyCode)
			return nil
		},
	}
}

func newRemoteStatementCommand(a *app, f *clientFlags) *cobra.Command {
	var flags statementFlags
	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Fetch a statement from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			client, closeConn, err := a.connect(f)
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := a.callContext(cmd, f)
			defer cancel()
			st, err := client.Statement(ctx, flags.req)
			if err != nil {
				return err
			}
			return printStatement(cmd.OutOrStdout(), a.renderer(), st, flags.format)
		},
	}
	flags.register(cmd)
	return cmd
}

// newExportCommand 把伺服器上的交易紀錄存成 seed 檔，可再用來啟動新的伺服器
func newExportCommand(a *app, f *clientFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the server history as a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeConn, err := a.connect(f)
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := a.callContext(cmd, f)
			defer cancel()
			st, err := client.Statement(ctx, api.StatementRequest{})
			if err != nil {
				return err
			}
			if err := seedfile.Export(out, st.Transactions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d transactions to %s\n", len(st.Transactions), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "seed.jsonl", "output file")
	return cmd
}

// newBenchCommand 併發送出存款，量測吞吐量
func newBenchCommand(a *app, f *clientFlags) *cobra.Command {
	var (
		total       int
		concurrency int
		amount      string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Send concurrent deposits and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if total <= 0 || concurrency <= 0 {
				return errors.New("count and concurrency must be positive")
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			client, closeConn, err := a.connect(f)
			if err != nil {
				return err
			}
			defer closeConn()

			ctx := cmd.Context()
			var (
				wg       sync.WaitGroup
				failed   atomic.Int64
				rejected atomic.Int64
			)
			sem := make(chan struct{}, concurrency)
			startTime := time.Now()

			sent := 0
			for ; sent < total && ctx.Err() == nil; sent++ {
				sem <- struct{}{}
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					defer func() { <-sem }()

					callCtx, cancel := a.callContext(cmd, f)
					defer cancel()
					reply, err := client.Deposit(callCtx, value, "bench "+uuid.NewString(), time.Time{})
					switch {
					case err != nil:
						if failed.Add(1) == 1 {
							a.logger.Warn("bench deposit failed", zap.Int("index", idx), zap.Error(err))
						}
					case !reply.Accepted:
						rejected.Add(1)
					}
				}(sent)
			}
			wg.Wait()

			elapsed := time.Since(startTime)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed %d requests in %v\n", sent, elapsed)
			fmt.Fprintf(out, "Failed: %d, Rejected: %d\n", failed.Load(), rejected.Load())
			fmt.Fprintf(out, "TPS: %.2f\n", float64(sent)/elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().IntVarP(&total, "count", "n", 1000, "number of deposits")
	cmd.Flags().IntVar(&concurrency, "concurrency", 50, "concurrent requests")
	cmd.Flags().StringVar(&amount, "amount", "1", "amount per deposit")
	return cmd
}
