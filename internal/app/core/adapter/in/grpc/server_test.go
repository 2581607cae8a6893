package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/api"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

const bufSize = 1024 * 1024

func seeds() []domain.SeedTransaction {
	at := func(month time.Month, day, hour, minute int) time.Time {
		return time.Date(2025, month, day, hour, minute, 0, 0, time.UTC)
	}
	return []domain.SeedTransaction{
		{Timestamp: at(1, 16, 10, 30), Description: "Salary", Amount: decimal.NewFromInt(11000), Kind: domain.TransactionKindDeposit},
		{Timestamp: at(1, 17, 11, 45), Kind: domain.TransactionKindFullWithdrawal},
		{Timestamp: at(1, 25, 13, 21), Description: "Fund return", Amount: decimal.NewFromInt(800), Kind: domain.TransactionKindDeposit},
		{Timestamp: at(2, 18, 8, 30), Description: "Rent", Amount: decimal.NewFromInt(300), Kind: domain.TransactionKindWithdrawal},
	}
}

// startServer 以 bufconn 啟動服務並回傳客戶端
func startServer(t *testing.T, ledger usecase.Ledger, opts ...grpc.ServerOption) (*Client, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(opts...)
	RegisterLedgerServiceServer(s, NewGrpcServer(usecase.NewCoreUseCase(ledger), zap.NewNop()))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn), conn
}

func TestGrpc_DepositAndWithdraw(t *testing.T) {
	ctx := context.Background()
	client, _ := startServer(t, memory.NewMutexLedger(seeds(), nil))

	reply, err := client.Deposit(ctx, decimal.RequireFromString("150.50"), "Bonus", time.Time{})
	require.NoError(t, err)
	assert.True(t, reply.Accepted)
	assert.Equal(t, "EUR", reply.Currency)
	assert.True(t, reply.Balance.Equal(decimal.RequireFromString("650.50")))
	require.NotNil(t, reply.Outcome.Transaction)
	assert.Equal(t, "Bonus", reply.Outcome.Transaction.Description)
	assert.Equal(t, domain.TransactionKindDeposit, reply.Outcome.Transaction.Kind)

	reply, err = client.Withdraw(ctx, decimal.NewFromInt(10000), "Car", time.Time{})
	require.NoError(t, err)
	assert.False(t, reply.Accepted)
	assert.Equal(t, domain.OutcomeInsufficientFunds, reply.Outcome.Status)
	assert.Equal(t, "There are insufficient funds in your account to proceed with withdrawing requested 10000.00 EUR.", reply.Outcome.Message)
	assert.Nil(t, reply.Outcome.Transaction)
	assert.True(t, reply.Balance.Equal(decimal.RequireFromString("650.50")))
}

func TestGrpc_ConcurrentRepliesMatchTheirTransaction(t *testing.T) {
	engines := map[string]func() usecase.Ledger{
		"mutex": func() usecase.Ledger { return memory.NewMutexLedger(nil, nil) },
		"lmax": func() usecase.Ledger {
			l := memory.NewLMAXLedger(nil, nil)
			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)
			l.Start(ctx)
			return l
		},
	}

	for name, newLedger := range engines {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			client, _ := startServer(t, newLedger())

			const workers, perWorker = 16, 25
			replies := make(chan api.MutationReply, workers*perWorker)
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						reply, err := client.Deposit(ctx, decimal.NewFromInt(1), "", time.Time{})
						if !assert.NoError(t, err) {
							return
						}
						replies <- reply
					}
				}()
			}
			wg.Wait()
			close(replies)

			seen := make(map[string]bool)
			for reply := range replies {
				require.True(t, reply.Accepted)
				require.NotNil(t, reply.Outcome.Transaction)
				assert.True(t, reply.Balance.Equal(reply.Outcome.Transaction.BalanceAfter),
					"balance=%s balance_after=%s", reply.Balance, reply.Outcome.Transaction.BalanceAfter)
				assert.Contains(t, reply.Outcome.Message, "Your account balance is now "+domain.FormatAmount(reply.Balance)+" EUR.")
				seen[reply.Balance.String()] = true
			}
			// 每筆存款看到的餘額都不同
			assert.Len(t, seen, workers*perWorker)

			balance, err := client.Balance(ctx)
			require.NoError(t, err)
			assert.True(t, balance.Equal(decimal.NewFromInt(workers*perWorker)))
		})
	}
}

func TestGrpc_RejectionReportsCurrentBalance(t *testing.T) {
	client, _ := startServer(t, memory.NewMutexLedger(seeds(), nil))

	reply, err := client.Withdraw(context.Background(), decimal.Zero, "", time.Time{})

	require.NoError(t, err)
	assert.False(t, reply.Accepted)
	assert.True(t, reply.Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, reply.Outcome.Balance.Equal(reply.Balance))
}

func TestGrpc_ExplicitTimestamp(t *testing.T) {
	ctx := context.Background()
	client, _ := startServer(t, memory.NewMutexLedger(nil, nil))
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	reply, err := client.Deposit(ctx, decimal.NewFromInt(5), "", at)

	require.NoError(t, err)
	require.NotNil(t, reply.Outcome.Transaction)
	assert.True(t, at.Equal(reply.Outcome.Transaction.Timestamp))
}

func TestGrpc_WithdrawAll(t *testing.T) {
	ctx := context.Background()
	client, _ := startServer(t, memory.NewMutexLedger(seeds(), nil))

	reply, err := client.WithdrawAll(ctx, time.Time{})
	require.NoError(t, err)
	assert.True(t, reply.Accepted)
	assert.True(t, reply.Balance.IsZero())

	reply, err = client.WithdrawAll(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoFunds, reply.Outcome.Status)
}

func TestGrpc_Balance(t *testing.T) {
	client, _ := startServer(t, memory.NewMutexLedger(seeds(), nil))

	balance, err := client.Balance(context.Background())

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)))
}

func TestGrpc_Statement(t *testing.T) {
	ctx := context.Background()
	client, _ := startServer(t, memory.NewMutexLedger(seeds(), nil))

	tests := []struct {
		name         string
		req          api.StatementRequest
		wantLen      int
		wantBalance  bool
		wantDeposits bool
	}{
		{"all", api.StatementRequest{}, 4, true, true},
		{"deposits", api.StatementRequest{Kind: "deposit"}, 2, false, true},
		{"withdrawals", api.StatementRequest{Kind: "withdrawal"}, 2, false, false},
		{"range", api.StatementRequest{From: "2025-01-17", To: "2025-01-25"}, 2, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := client.Statement(ctx, tt.req)
			require.NoError(t, err)
			assert.Len(t, st.Transactions, tt.wantLen)
			assert.Equal(t, tt.wantBalance, st.Totals.Balance.Valid)
			assert.Equal(t, tt.wantDeposits, st.Totals.SumOfDeposits.Valid)
		})
	}

	st, err := client.Statement(ctx, api.StatementRequest{})
	require.NoError(t, err)
	assert.True(t, st.Totals.SumOfDeposits.Decimal.Equal(decimal.NewFromInt(11800)))
	assert.True(t, st.Totals.SumOfWithdrawals.Decimal.Equal(decimal.NewFromInt(11300)))
	assert.Nil(t, st.RangeStart)
}

func TestGrpc_InvalidArgument(t *testing.T) {
	ctx := context.Background()
	client, conn := startServer(t, memory.NewMutexLedger(nil, nil))

	_, err := client.Statement(ctx, api.StatementRequest{From: "2025-01-01"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Statement(ctx, api.StatementRequest{Kind: "loan"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{"amount": "a lot"})
	require.NoError(t, err)
	err = conn.Invoke(ctx, FullMethod(MethodDeposit), bad, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGrpc_StoppedLedgerIsUnavailable(t *testing.T) {
	ledger := memory.NewLMAXLedger(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	ledger.Start(ctx)
	cancel()
	require.Eventually(t, func() bool {
		_, err := ledger.Balance(context.Background())
		return err == domain.ErrLedgerStopped
	}, time.Second, 5*time.Millisecond)

	client, _ := startServer(t, ledger)

	_, err := client.Deposit(context.Background(), decimal.NewFromInt(1), "", time.Time{})

	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	client, _ := startServer(t, memory.NewMutexLedger(nil, nil),
		grpc.UnaryInterceptor(LoggingInterceptor(zap.New(core))))

	_, err := client.Balance(context.Background())
	require.NoError(t, err)
	_, err = client.Statement(context.Background(), api.StatementRequest{Kind: "nope"})
	require.Error(t, err)

	ok := logs.FilterMessage("grpc request").All()
	require.Len(t, ok, 1)
	assert.Equal(t, FullMethod(MethodGetBalance), ok[0].ContextMap()["method"])

	failed := logs.FilterMessage("grpc request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "InvalidArgument", failed[0].ContextMap()["code"])
}
