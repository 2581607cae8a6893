package domain

import "errors"

var (
	// ErrAmountMustBePositive 金額必須大於零
	ErrAmountMustBePositive = errors.New("transaction amount must be greater than zero")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoFunds 餘額為零，無法全額提款
	ErrNoFunds = errors.New("no funds in account")

	// ErrUnknownTransactionKind 未知的交易類型
	ErrUnknownTransactionKind = errors.New("unknown transaction kind")

	// ErrLedgerStopped 帳本核心已停止，不再接受操作
	ErrLedgerStopped = errors.New("ledger stopped")
)
