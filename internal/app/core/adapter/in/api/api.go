// Package api 定義傳輸層 (gRPC / REST) 共用的請求與回應格式
package api

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

// MutationRequest 存款 / 提款請求
type MutationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	// Timestamp 交易時間，未提供時使用伺服器時間
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// At 交易時間，未提供時為零值
func (r MutationRequest) At() time.Time {
	if r.Timestamp == nil {
		return time.Time{}
	}
	return *r.Timestamp
}

// WithdrawAllRequest 全額提款請求
type WithdrawAllRequest struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// At 交易時間，未提供時為零值
func (r WithdrawAllRequest) At() time.Time {
	if r.Timestamp == nil {
		return time.Time{}
	}
	return *r.Timestamp
}

// StatementRequest 對帳單請求，欄位格式同 usecase.ParseStatementQuery
type StatementRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// Query 轉為 domain 查詢條件
func (r StatementRequest) Query() (domain.StatementQuery, error) {
	return usecase.ParseStatementQuery(r.From, r.To, r.Kind)
}

// MutationReply 存提款結果
// 業務拒絕時 Accepted=false，Outcome.Message 說明原因 (Soft Failure)
type MutationReply struct {
	Accepted bool            `json:"accepted"`
	Outcome  domain.Outcome  `json:"outcome"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// NewMutationReply 組裝存提款結果
// Balance 取自 Outcome，與該筆操作在同一個臨界區內讀出
func NewMutationReply(o domain.Outcome) MutationReply {
	return MutationReply{
		Accepted: o.Accepted(),
		Outcome:  o,
		Balance:  o.Balance,
		Currency: domain.CurrencyCode,
	}
}

// BalanceReply 餘額查詢結果
type BalanceReply struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// ErrorReply 錯誤回應
type ErrorReply struct {
	Error string `json:"error"`
}

// IsInvalidInput 是否為呼叫端輸入錯誤
func IsInvalidInput(err error) bool {
	return errors.Is(err, usecase.ErrInvalidQuery) || errors.Is(err, domain.ErrUnknownTransactionKind)
}
