package domain

import "github.com/shopspring/decimal"

// SummaryTotals 顯示用的合計
// 各欄位是否有值取決於查詢的交易類型，Valid=false 代表該欄不顯示
type SummaryTotals struct {
	SumOfDeposits    decimal.NullDecimal `json:"sum_of_deposits"`
	SumOfWithdrawals decimal.NullDecimal `json:"sum_of_withdrawals"`
	Balance          decimal.NullDecimal `json:"balance"`
}

// Summarize 計算已過濾交易的合計
//
// 參數:
//
//	accountBalance: 帳戶目前餘額
//	kind: 查詢時使用的類型條件，0 表示全部類型
//	selected: 已過濾的交易
//
// 回傳:
//
//	SummaryTotals:
//	  kind 為 0 → 三個欄位都有值
//	  kind 為 Deposit → 只有 SumOfDeposits (selected 視為已過濾成存款)
//	  kind 為 Withdrawal / FullWithdrawal → 只有 SumOfWithdrawals
func Summarize(accountBalance decimal.Decimal, kind TransactionKind, selected []Transaction) SummaryTotals {
	switch {
	case kind == TransactionKindDeposit:
		return SummaryTotals{
			SumOfDeposits: valid(sumAmounts(selected, nil)),
		}
	case kind.IsWithdrawal():
		return SummaryTotals{
			SumOfWithdrawals: valid(sumAmounts(selected, nil)),
		}
	default:
		return SummaryTotals{
			SumOfDeposits: valid(sumAmounts(selected, func(k TransactionKind) bool {
				return k == TransactionKindDeposit
			})),
			SumOfWithdrawals: valid(sumAmounts(selected, TransactionKind.IsWithdrawal)),
			Balance:          valid(accountBalance),
		}
	}
}

// sumAmounts 加總金額，keep 為 nil 時全部加總
func sumAmounts(transactions []Transaction, keep func(TransactionKind) bool) decimal.Decimal {
	sum := decimal.Zero
	for _, tran := range transactions {
		if keep != nil && !keep(tran.Kind) {
			continue
		}
		sum = sum.Add(tran.Amount)
	}
	return sum
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
