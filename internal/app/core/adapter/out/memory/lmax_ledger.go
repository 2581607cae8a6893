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

// ledgerRequest 送進輸送帶的操作，done 讓呼叫端可以等待結果
type ledgerRequest struct {
	apply func(*domain.Ledger)
	done  chan struct{}
}

// LMAXLedger 單一寫入者的帳本
// 所有操作 (含讀取) 都由 run loop 依序執行，domain.Ledger 不需要鎖
type LMAXLedger struct {
	ledger *domain.Ledger
	// 輸送帶 負責接收操作
	// 不使用 buffer：送出成功即代表 run loop 已接手，停止後不會有請求卡在 channel 裡
	requestChan chan *ledgerRequest
	// run loop 結束時關閉
	stopped chan struct{}
	// Pool 減少 GC 壓力
	requestPool sync.Pool
	logger      *zap.Logger
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需呼叫 Start 後才會處理操作
//
// 參數:
//
//	seeds: 啟動前重放的交易 (單執行緒，不經過 channel)
//	logger: 記錄重放結果與引擎狀態，nil 時不記錄
//	opts: domain.Ledger 選項
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
func NewLMAXLedger(seeds []domain.SeedTransaction, logger *zap.Logger, opts ...domain.LedgerOption) *LMAXLedger {
	ledger, outcomes := domain.NewLedgerFromSeed(seeds, opts...)
	logReplay(logger, "lmax", outcomes)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LMAXLedger{
		ledger:      ledger,
		requestChan: make(chan *ledgerRequest),
		stopped:     make(chan struct{}),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &ledgerRequest{
					done: make(chan struct{}, 1),
				}
			},
		},
		logger: logger,
	}
}

// Start 啟動核心引擎 (非同步)，ctx 取消後停止
func (l *LMAXLedger) Start(ctx context.Context) {
	go l.run(ctx)
}

func (l *LMAXLedger) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，先標記停止再把已送出的操作處理完
			close(l.stopped)
			l.drain()
			l.logger.Info("lmax ledger stopped", zap.Int("transactions", l.ledger.Len()))
			return
		case req := <-l.requestChan:
			l.process(req)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requestChan:
			l.process(req)
		default:
			return
		}
	}
}

func (l *LMAXLedger) process(req *ledgerRequest) {
	req.apply(l.ledger)
	req.done <- struct{}{}
}

// submit 把操作放上輸送帶並等待執行完成
//
// 參數:
//
//	ctx: 上下文，送出前取消則放棄
//	apply: 在 run loop 內執行的操作
//
// 回傳:
//
//	error: ErrLedgerStopped 或 ctx 錯誤
//
// submit(等待) -> Channel -> Run Loop -> domain.Ledger -> done -> submit(收到結果)
func (l *LMAXLedger) submit(ctx context.Context, apply func(*domain.Ledger)) error {
	req := l.requestPool.Get().(*ledgerRequest)
	req.apply = apply

	select {
	case l.requestChan <- req:
	case <-l.stopped:
		req.apply = nil
		l.requestPool.Put(req)
		return domain.ErrLedgerStopped
	case <-ctx.Done():
		req.apply = nil
		l.requestPool.Put(req)
		return ctx.Err()
	}

	// 已被 run loop 接手，一定會執行完
	<-req.done
	req.apply = nil
	l.requestPool.Put(req)
	return nil
}

// Deposit 存款
func (l *LMAXLedger) Deposit(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error) {
	var outcome domain.Outcome
	err := l.submit(ctx, func(ledger *domain.Ledger) {
		outcome = ledger.Deposit(amount, description, at)
	})
	return outcome, err
}

// Withdraw 提款
func (l *LMAXLedger) Withdraw(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (domain.Outcome, error) {
	var outcome domain.Outcome
	err := l.submit(ctx, func(ledger *domain.Ledger) {
		outcome = ledger.Withdraw(amount, description, at)
	})
	return outcome, err
}

// WithdrawAll 全額提款
func (l *LMAXLedger) WithdrawAll(ctx context.Context, at time.Time) (domain.Outcome, error) {
	var outcome domain.Outcome
	err := l.submit(ctx, func(ledger *domain.Ledger) {
		outcome = ledger.WithdrawAll(at)
	})
	return outcome, err
}

// Balance 取得目前餘額 (同樣經過 run loop，讀到的是已完成操作後的值)
func (l *LMAXLedger) Balance(ctx context.Context) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := l.submit(ctx, func(ledger *domain.Ledger) {
		balance = ledger.Balance()
	})
	return balance, err
}

// Snapshot 取得餘額與交易紀錄
func (l *LMAXLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := l.submit(ctx, func(ledger *domain.Ledger) {
		snap = ledger.Snapshot()
	})
	return snap, err
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
