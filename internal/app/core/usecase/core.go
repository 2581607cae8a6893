package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

// ErrNoRenderer 沒有注入 Renderer 時無法輸出對帳單
var ErrNoRenderer = errors.New("no statement renderer configured")

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	ledger   Ledger
	renderer Renderer
	logger   *zap.Logger
	metrics  *Metrics
}

// Option 設定 CoreUseCase 的選項
type Option func(*CoreUseCase)

// WithRenderer 注入對帳單輸出元件
func WithRenderer(r Renderer) Option {
	return func(c *CoreUseCase) {
		c.renderer = r
	}
}

// WithLogger 注入 logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CoreUseCase) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics 注入指標
func WithMetrics(m *Metrics) Option {
	return func(c *CoreUseCase) {
		c.metrics = m
	}
}

func NewCoreUseCase(ledger Ledger, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		ledger: ledger,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deposit 存款
//
// 參數:
//
//	ctx: 上下文
//	amount: 金額
//	description: 描述
//	at: 交易時間，零值表示現在
//
// 回傳:
//
//	domain.Outcome: 業務結果 (拒絕也放在這裡)
//	error: 帳本無法處理 (如已停止)
func (c *CoreUseCase) Deposit(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error) {
	outcome, err := c.ledger.Deposit(ctx, amount, description, at)
	return c.record(outcome, err, amount)
}

// Withdraw 提款
func (c *CoreUseCase) Withdraw(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error) {
	outcome, err := c.ledger.Withdraw(ctx, amount, description, at)
	return c.record(outcome, err, amount)
}

// WithdrawAll 全額提款
func (c *CoreUseCase) WithdrawAll(ctx context.Context, at time.Time) (domain.Outcome, error) {
	outcome, err := c.ledger.WithdrawAll(ctx, at)
	return c.record(outcome, err, decimal.Zero)
}

// record 記錄 log 與指標
func (c *CoreUseCase) record(outcome domain.Outcome, err error, requested decimal.Decimal) (domain.Outcome, error) {
	if err != nil {
		c.logger.Error("ledger operation failed", zap.Error(err))
		return outcome, err
	}
	c.metrics.observeOutcome(outcome)

	fields := []zap.Field{
		zap.Stringer("kind", outcome.Kind),
		zap.Stringer("status", outcome.Status),
	}
	if outcome.Accepted() {
		fields = append(fields,
			zap.Stringer("transaction_id", outcome.Transaction.ID),
			zap.String("amount", outcome.Transaction.Amount.String()),
			zap.String("balance_after", outcome.Transaction.BalanceAfter.String()),
		)
		c.logger.Info("transaction registered", fields...)
	} else {
		fields = append(fields, zap.String("requested", requested.String()))
		c.logger.Warn("transaction rejected", fields...)
	}
	return outcome, nil
}

// Balance 取得目前餘額
func (c *CoreUseCase) Balance(ctx context.Context) (decimal.Decimal, error) {
	balance, err := c.ledger.Balance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	c.metrics.setBalance(balance)
	return balance, nil
}

// History 取得完整交易紀錄 (副本)
func (c *CoreUseCase) History(ctx context.Context) ([]domain.Transaction, error) {
	snap, err := c.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Transactions, nil
}

// Statement 依查詢條件產生對帳單
//
// 參數:
//
//	ctx: 上下文
//	q: 查詢條件
//
// 回傳:
//
//	domain.Statement: 過濾後的交易與合計
//	error: 取得帳本快照失敗
func (c *CoreUseCase) Statement(ctx context.Context, q domain.StatementQuery) (domain.Statement, error) {
	snap, err := c.ledger.Snapshot(ctx)
	if err != nil {
		return domain.Statement{}, err
	}
	c.metrics.observeStatement(q.Kind)
	return domain.BuildStatement(snap, q), nil
}

// AllTransactions 全部交易
func (c *CoreUseCase) AllTransactions(ctx context.Context) (domain.Statement, error) {
	return c.Statement(ctx, domain.StatementQuery{})
}

// AllDeposits 全部存款
func (c *CoreUseCase) AllDeposits(ctx context.Context) (domain.Statement, error) {
	return c.Statement(ctx, domain.StatementQuery{Kind: domain.TransactionKindDeposit})
}

// AllWithdrawals 全部提款 (含全額提款)
func (c *CoreUseCase) AllWithdrawals(ctx context.Context) (domain.Statement, error) {
	return c.Statement(ctx, domain.StatementQuery{Kind: domain.TransactionKindWithdrawal})
}

// TransactionsInRange 日期區間內的交易，結束日整天包含在內
func (c *CoreUseCase) TransactionsInRange(ctx context.Context, startDate, endDate time.Time) (domain.Statement, error) {
	return c.Statement(ctx, domain.StatementQuery{StartDate: startDate, EndDate: endDate})
}

// TransactionsInRangeByKind 日期區間內指定類型的交易
func (c *CoreUseCase) TransactionsInRangeByKind(ctx context.Context, startDate, endDate time.Time, kind domain.TransactionKind) (domain.Statement, error) {
	return c.Statement(ctx, domain.StatementQuery{StartDate: startDate, EndDate: endDate, Kind: kind})
}

// PrintStatement 產生對帳單並交給 Renderer 輸出
func (c *CoreUseCase) PrintStatement(ctx context.Context, w io.Writer, q domain.StatementQuery) error {
	if c.renderer == nil {
		return ErrNoRenderer
	}
	st, err := c.Statement(ctx, q)
	if err != nil {
		return err
	}
	if err := c.renderer.Render(w, st); err != nil {
		return fmt.Errorf("render statement: %w", err)
	}
	return nil
}
