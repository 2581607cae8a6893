package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// generalSeeds 六筆一般交易，最後餘額 9100
func generalSeeds() []SeedTransaction {
	return []SeedTransaction{
		{Timestamp: at(2025, 1, 16, 10, 30), Description: "Salary", Amount: dec("11000"), Kind: TransactionKindDeposit},
		{Timestamp: at(2025, 1, 17, 11, 45), Description: "Full transfer to another account", Amount: dec("0"), Kind: TransactionKindFullWithdrawal},
		{Timestamp: at(2025, 1, 25, 13, 21), Description: "Fund return", Amount: dec("800"), Kind: TransactionKindDeposit},
		{Timestamp: at(2025, 2, 2, 10, 30), Description: "Salary", Amount: dec("11000"), Kind: TransactionKindDeposit},
		{Timestamp: at(2025, 2, 18, 8, 30), Description: "Salary", Amount: dec("5000"), Kind: TransactionKindWithdrawal},
		{Timestamp: at(2025, 2, 27, 15, 15), Description: "Bonus for February", Amount: dec("2300"), Kind: TransactionKindDeposit},
	}
}

// mixedSeeds 合法與不合法交易混合
func mixedSeeds() []SeedTransaction {
	return []SeedTransaction{
		{Timestamp: at(2025, 1, 16, 10, 30), Description: "Car purchase", Amount: dec("9100"), Kind: TransactionKindWithdrawal},
		{Timestamp: at(2025, 1, 17, 11, 45), Description: "Full transfer to another account", Amount: dec("0"), Kind: TransactionKindFullWithdrawal},
		{Timestamp: at(2025, 1, 25, 13, 21), Description: "Laptop purchase", Amount: dec("800"), Kind: TransactionKindWithdrawal},
		{Timestamp: at(2025, 2, 2, 10, 30), Description: "Refund", Amount: dec("1000"), Kind: TransactionKindDeposit},
		{Timestamp: at(2025, 2, 18, 8, 30), Description: "Small expense", Amount: dec("0"), Kind: TransactionKindWithdrawal},
		{Timestamp: at(2025, 2, 2, 10, 30), Description: "Zero deposit", Amount: dec("0"), Kind: TransactionKindDeposit},
		{Timestamp: at(2025, 2, 2, 10, 30), Description: "Negative amount deposit", Amount: dec("-300"), Kind: TransactionKindDeposit},
		{Timestamp: at(2025, 2, 27, 15, 15), Description: "Negative amount withdrawal", Amount: dec("-100"), Kind: TransactionKindWithdrawal},
	}
}
