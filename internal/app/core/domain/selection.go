package domain

import "time"

// Criteria 交易查詢條件
//
// Start / End 任一為零值時不做時間過濾；兩者皆有值時包含兩端
// Kind 為零值時不做類型過濾
type Criteria struct {
	Start time.Time
	End   time.Time
	Kind  TransactionKind
}

// HasRange 是否有完整的時間區間
func (c Criteria) HasRange() bool {
	return !c.Start.IsZero() && !c.End.IsZero()
}

// Select 依時間區間與類型過濾交易，保持原本順序
// 沒有符合的交易時回傳空 slice
func Select(transactions []Transaction, c Criteria) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, tran := range transactions {
		if c.HasRange() && !inRange(tran.Timestamp, c.Start, c.End) {
			continue
		}
		if c.Kind != 0 && !tran.Kind.Matches(c.Kind) {
			continue
		}
		out = append(out, tran)
	}
	return out
}

func inRange(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}

// DayRange 將日期區間轉為時間區間
// start 為開始日 00:00，end 為結束日隔天 00:00，讓結束日整天都包含在內
func DayRange(startDate, endDate time.Time) (start, end time.Time) {
	y, m, d := startDate.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, startDate.Location())
	y, m, d = endDate.Date()
	end = time.Date(y, m, d+1, 0, 0, 0, 0, endDate.Location())
	return start, end
}
