package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	ledger: 單執行緒的 domain 帳本
//	mu: RWMutex，寫入操作取寫鎖，讀取餘額與交易紀錄取讀鎖
type MutexLedger struct {
	ledger *domain.Ledger
	mu     sync.RWMutex
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	seeds: 啟動時重放的交易，可為 nil
//	logger: 記錄重放時被拒絕的交易，nil 時不記錄
//	opts: domain.Ledger 選項
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(seeds []domain.SeedTransaction, logger *zap.Logger, opts ...domain.LedgerOption) *MutexLedger {
	ledger, outcomes := domain.NewLedgerFromSeed(seeds, opts...)
	logReplay(logger, "mutex", outcomes)
	return &MutexLedger{
		ledger: ledger,
	}
}

// Deposit 存款 (寫鎖)
func (m *MutexLedger) Deposit(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Deposit(amount, description, at), nil
}

// Withdraw 提款 (寫鎖)
func (m *MutexLedger) Withdraw(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Withdraw(amount, description, at), nil
}

// WithdrawAll 全額提款 (寫鎖)
func (m *MutexLedger) WithdrawAll(ctx context.Context, at time.Time) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.WithdrawAll(at), nil
}

// Balance 取得目前餘額
//
// 參數:
//
//	ctx: 上下文
//
// 回傳:
//
//	decimal.Decimal: 帳戶餘額
//	error: ctx 已取消
func (m *MutexLedger) Balance(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.Balance(), nil
}

// Snapshot 在同一把讀鎖內取得餘額與交易紀錄
func (m *MutexLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.Snapshot(), nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
