package usecase

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

// Ledger 是帳本的介面，實作需自行保證並行安全
type Ledger interface {
	// Deposit 存款，at 為零值時使用帳本時鐘
	Deposit(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error)
	// Withdraw 提款
	Withdraw(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error)
	// WithdrawAll 全額提款
	WithdrawAll(ctx context.Context, at time.Time) (domain.Outcome, error)
	// Balance 目前餘額
	Balance(ctx context.Context) (decimal.Decimal, error)
	// Snapshot 同一時間點的餘額與交易紀錄
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Renderer 將對帳單輸出到 w
type Renderer interface {
	Render(w io.Writer, st domain.Statement) error
}
