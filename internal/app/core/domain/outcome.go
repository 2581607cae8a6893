package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OutcomeStatus 帳本操作結果
type OutcomeStatus uint8

const (
	// 成功，已新增一筆交易
	OutcomeAccepted OutcomeStatus = iota
	// 金額不合法 (存款 <= 0 或提款 == 0)
	OutcomeNonPositiveAmount
	// 提款金額大於餘額
	OutcomeInsufficientFunds
	// 全額提款時餘額為零
	OutcomeNoFunds
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeNonPositiveAmount:
		return "non_positive_amount"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	case OutcomeNoFunds:
		return "no_funds"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s OutcomeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome 一次帳本操作的結果
// 業務規則拒絕不是 error：帳本狀態不變，由呼叫端決定如何顯示 Message
type Outcome struct {
	// Kind 操作類型 (存款 / 提款 / 全額提款)
	Kind   TransactionKind `json:"kind"`
	Status OutcomeStatus   `json:"status"`
	// Message 給使用者看的訊息
	Message string `json:"message"`
	// Transaction 成功時新增的交易 (副本)，失敗時為 nil
	Transaction *Transaction `json:"transaction,omitempty"`
	// Balance 操作完成當下的餘額，與 Message 及 Transaction.BalanceAfter 一致
	Balance decimal.Decimal `json:"balance"`
}

// Accepted 操作是否成功
func (o Outcome) Accepted() bool {
	return o.Status == OutcomeAccepted
}

// Err 將拒絕原因轉為 sentinel error，成功時回傳 nil
// 方便傳輸層用 errors.Is 對應狀態碼
func (o Outcome) Err() error {
	switch o.Status {
	case OutcomeAccepted:
		return nil
	case OutcomeNonPositiveAmount:
		return ErrAmountMustBePositive
	case OutcomeInsufficientFunds:
		return ErrInsufficientFunds
	case OutcomeNoFunds:
		return ErrNoFunds
	default:
		return fmt.Errorf("unexpected outcome status %s", o.Status)
	}
}

// ParseOutcomeStatus 將 String() 的結果轉回 OutcomeStatus
func ParseOutcomeStatus(s string) (OutcomeStatus, error) {
	for _, status := range []OutcomeStatus{OutcomeAccepted, OutcomeNonPositiveAmount, OutcomeInsufficientFunds, OutcomeNoFunds} {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome status %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *OutcomeStatus) UnmarshalText(text []byte) error {
	status, err := ParseOutcomeStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
