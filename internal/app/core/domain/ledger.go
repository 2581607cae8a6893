package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgAmountMustBePositive = "Transaction amount must be greater than zero."
	msgInsufficientFunds    = "There are insufficient funds in your account to proceed with withdrawing requested %s " + CurrencyCode + "."
	msgNoFunds              = "You have no funds in your account, therefore requested withdrawal was not proceeded."
	msgDeposited            = "%s " + CurrencyCode + " has been successfully DEPOSITED on your account. Your account balance is now %s " + CurrencyCode + "."
	msgWithdrawn            = "%s " + CurrencyCode + " has been successfully WITHDRAWN from your account. Your account balance is now %s " + CurrencyCode + "."
	msgFullyWithdrawn       = "The full withdrawal of your funds (%s " + CurrencyCode + ") has been performed. Current balance is 0 " + CurrencyCode + "."
)

// Ledger 單一帳戶的帳本
//
// 結構:
//
//	transactions: 交易紀錄，只會附加，順序即為顯示順序
//	balance: 目前餘額，永遠等於最後一筆交易的 BalanceAfter (無交易時為 0)
//
// Ledger 本身不做同步，多執行緒共用時請使用 memory adapter 包裝
type Ledger struct {
	transactions []Transaction
	balance      decimal.Decimal
	now          func() time.Time
	newID        func() uuid.UUID
}

// LedgerOption 設定 Ledger 的選項
type LedgerOption func(*Ledger)

// WithClock 設定未指定時間時使用的時鐘
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator 設定交易 ID 產生器
func WithIDGenerator(newID func() uuid.UUID) LedgerOption {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// NewLedger 建立空帳本
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		transactions: make([]Transaction, 0),
		balance:      decimal.Zero,
		now:          time.Now,
		newID:        uuid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLedgerFromSeed 以既有交易資料重放建立帳本
//
// 參數:
//
//	seeds: 依序重放的交易，時間戳原樣使用
//	opts: Ledger 選項
//
// 回傳:
//
//	*Ledger: 重放後的帳本
//	[]Outcome: 每筆 seed 的結果 (與 seeds 一一對應)，不合法的 seed 不會入帳
//
// seed 類型不在封閉列舉內屬於程式錯誤，直接 panic
func NewLedgerFromSeed(seeds []SeedTransaction, opts ...LedgerOption) (*Ledger, []Outcome) {
	l := NewLedger(opts...)
	outcomes := make([]Outcome, 0, len(seeds))
	for _, seed := range seeds {
		outcomes = append(outcomes, l.applySeed(seed))
	}
	return l, outcomes
}

// applySeed 重放單筆 seed，與即時呼叫走同一套邏輯
func (l *Ledger) applySeed(seed SeedTransaction) Outcome {
	switch seed.Kind {
	case TransactionKindDeposit:
		return l.Deposit(seed.Amount, seed.Description, seed.Timestamp)
	case TransactionKindWithdrawal:
		return l.Withdraw(seed.Amount, seed.Description, seed.Timestamp)
	case TransactionKindFullWithdrawal:
		return l.WithdrawAll(seed.Timestamp)
	default:
		panic(fmt.Errorf("%w: %d", ErrUnknownTransactionKind, uint8(seed.Kind)))
	}
}

// Deposit 存款
//
// 參數:
//
//	amount: 金額，必須大於零
//	description: 交易描述，可為空
//	at: 交易時間，零值表示現在
//
// 回傳:
//
//	Outcome: 操作結果
func (l *Ledger) Deposit(amount decimal.Decimal, description string, at time.Time) Outcome {
	if !amount.IsPositive() {
		return l.rejected(TransactionKindDeposit, OutcomeNonPositiveAmount, msgAmountMustBePositive)
	}
	l.balance = l.balance.Add(amount)
	tran := l.register(amount, description, TransactionKindDeposit, at)
	return accepted(tran, fmt.Sprintf(msgDeposited, FormatAmount(amount), FormatAmount(l.balance)))
}

// Withdraw 提款
// 負數金額取絕對值處理 (容忍上游未擋下的負數輸入)
//
// 參數:
//
//	amount: 金額，不可為零
//	description: 交易描述，可為空
//	at: 交易時間，零值表示現在
//
// 回傳:
//
//	Outcome: 操作結果 (金額為零或餘額不足時不入帳)
func (l *Ledger) Withdraw(amount decimal.Decimal, description string, at time.Time) Outcome {
	if amount.IsZero() {
		return l.rejected(TransactionKindWithdrawal, OutcomeNonPositiveAmount, msgAmountMustBePositive)
	}
	amount = amount.Abs()
	if l.balance.LessThan(amount) {
		return l.rejected(TransactionKindWithdrawal, OutcomeInsufficientFunds,
			fmt.Sprintf(msgInsufficientFunds, FormatAmount(amount)))
	}
	l.balance = l.balance.Sub(amount)
	tran := l.register(amount, description, TransactionKindWithdrawal, at)
	return accepted(tran, fmt.Sprintf(msgWithdrawn, FormatAmount(amount), FormatAmount(l.balance)))
}

// WithdrawAll 全額提款，餘額歸零
//
// 參數:
//
//	at: 交易時間，零值表示現在
//
// 回傳:
//
//	Outcome: 操作結果 (餘額為零時不入帳)
func (l *Ledger) WithdrawAll(at time.Time) Outcome {
	if l.balance.IsZero() {
		return l.rejected(TransactionKindFullWithdrawal, OutcomeNoFunds, msgNoFunds)
	}
	previous := l.balance
	l.balance = decimal.Zero
	tran := l.register(previous, FullWithdrawalDescription, TransactionKindFullWithdrawal, at)
	return accepted(tran, fmt.Sprintf(msgFullyWithdrawn, FormatAmount(previous)))
}

// register 在餘額更新後附加交易紀錄
func (l *Ledger) register(amount decimal.Decimal, description string, kind TransactionKind, at time.Time) Transaction {
	if at.IsZero() {
		at = l.now()
	}
	tran := Transaction{
		ID:           l.newID(),
		Timestamp:    at,
		Description:  description,
		Amount:       amount,
		BalanceAfter: l.balance,
		Kind:         kind,
	}
	l.transactions = append(l.transactions, tran)
	return tran
}

// Balance 目前餘額
func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

// Len 交易筆數
func (l *Ledger) Len() int {
	return len(l.transactions)
}

// Transactions 回傳交易紀錄副本，修改副本不影響帳本
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Snapshot 同時取得餘額與交易紀錄副本
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Balance:      l.balance,
		Transactions: l.Transactions(),
	}
}

// Snapshot 某一時間點的帳本狀態 (餘額與交易紀錄一致)
type Snapshot struct {
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

func accepted(tran Transaction, message string) Outcome {
	return Outcome{
		Kind:        tran.Kind,
		Status:      OutcomeAccepted,
		Message:     message,
		Transaction: &tran,
		Balance:     tran.BalanceAfter,
	}
}

// rejected 帳本狀態不變，回報目前餘額
func (l *Ledger) rejected(kind TransactionKind, status OutcomeStatus, message string) Outcome {
	return Outcome{
		Kind:    kind,
		Status:  status,
		Message: message,
		Balance: l.balance,
	}
}
