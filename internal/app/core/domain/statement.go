package domain

import "time"

// StatementQuery 對帳單查詢
// StartDate / EndDate 為日期 (時間部分忽略)，需同時提供才會套用區間
type StatementQuery struct {
	StartDate time.Time
	EndDate   time.Time
	Kind      TransactionKind
}

// HasRange 是否指定了日期區間
func (q StatementQuery) HasRange() bool {
	return !q.StartDate.IsZero() && !q.EndDate.IsZero()
}

// Statement 交給 renderer 的對帳單資料
// RangeStart / RangeEnd 只有在查詢指定日期區間時才有值
type Statement struct {
	Transactions []Transaction   `json:"transactions"`
	Totals       SummaryTotals   `json:"totals"`
	Kind         TransactionKind `json:"kind,omitempty"`
	RangeStart   *time.Time      `json:"range_start,omitempty"`
	RangeEnd     *time.Time      `json:"range_end,omitempty"`
}

// BuildStatement 從帳本快照產生對帳單
//
// 參數:
//
//	snapshot: 帳本快照 (餘額與交易需來自同一時間點)
//	q: 查詢條件
//
// 回傳:
//
//	Statement: 過濾後的交易、合計與實際使用的時間區間
func BuildStatement(snapshot Snapshot, q StatementQuery) Statement {
	criteria := Criteria{Kind: q.Kind}
	st := Statement{Kind: q.Kind}
	if q.HasRange() {
		start, end := DayRange(q.StartDate, q.EndDate)
		criteria.Start, criteria.End = start, end
		st.RangeStart, st.RangeEnd = &start, &end
	}
	st.Transactions = Select(snapshot.Transactions, criteria)
	st.Totals = Summarize(snapshot.Balance, q.Kind, st.Transactions)
	return st
}
