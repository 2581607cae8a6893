package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyCode 帳戶唯一幣別 (單一幣別帳戶)
const CurrencyCode = "EUR"

// FullWithdrawalDescription 全額提款交易的固定描述
const FullWithdrawalDescription = "Full withdrawal of funds"

// TransactionKind 交易類型 (封閉列舉)
// 0 保留給「未指定」，查詢時代表不過濾類型
type TransactionKind uint8

const (
	// 存款
	TransactionKindDeposit TransactionKind = 1
	// 提款
	TransactionKindWithdrawal TransactionKind = 2
	// 全額提款，查詢提款時一併納入
	TransactionKindFullWithdrawal TransactionKind = 3
)

// Valid 是否為三種已知類型之一
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindDeposit, TransactionKindWithdrawal, TransactionKindFullWithdrawal:
		return true
	}
	return false
}

// IsWithdrawal 提款家族 (一般提款 + 全額提款)
func (k TransactionKind) IsWithdrawal() bool {
	return k == TransactionKindWithdrawal || k == TransactionKindFullWithdrawal
}

// Matches 判斷交易類型是否符合查詢條件
// 查詢 Withdrawal 時 FullWithdrawal 也算符合；其餘類型需完全相同
func (k TransactionKind) Matches(filter TransactionKind) bool {
	if filter == TransactionKindWithdrawal {
		return k.IsWithdrawal()
	}
	return k == filter
}

func (k TransactionKind) String() string {
	switch k {
	case TransactionKindDeposit:
		return "deposit"
	case TransactionKindWithdrawal:
		return "withdrawal"
	case TransactionKindFullWithdrawal:
		return "full_withdrawal"
	case 0:
		return ""
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseTransactionKind 將字串轉為交易類型，不分大小寫，"-" 與 "_" 視為相同
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "deposit":
		return TransactionKindDeposit, nil
	case "withdrawal":
		return TransactionKindWithdrawal, nil
	case "full_withdrawal":
		return TransactionKindFullWithdrawal, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k TransactionKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTransactionKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// 未知的字串一律回傳錯誤，確保只有封閉列舉內的值能進入帳本
func (k *TransactionKind) UnmarshalText(text []byte) error {
	kind, err := ParseTransactionKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Transaction 已完成的交易，建立後不可變更
// 只有 Ledger 會建立 Transaction
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"` // 永遠為正，方向由 Kind 決定
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Kind         TransactionKind `json:"kind"`
}

// Equal 以值比較兩筆交易
// decimal.Decimal 內含指標，不能直接用 ==
func (t Transaction) Equal(other Transaction) bool {
	return t.ID == other.ID &&
		t.Timestamp.Equal(other.Timestamp) &&
		t.Description == other.Description &&
		t.Amount.Equal(other.Amount) &&
		t.BalanceAfter.Equal(other.BalanceAfter) &&
		t.Kind == other.Kind
}

// SeedTransaction 建立帳本時用來重放的輸入資料
// 沒有 BalanceAfter，餘額在重放時計算
type SeedTransaction struct {
	Timestamp   time.Time
	Description string
	Amount      decimal.Decimal
	Kind        TransactionKind
}
