package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

// DateLayout 查詢參數的日期格式
const DateLayout = "2006-01-02"

// ErrInvalidQuery 查詢參數不合法
var ErrInvalidQuery = errors.New("invalid statement query")

// ParseStatementQuery 解析傳輸層收到的查詢參數
//
// 參數:
//
//	from, to: 日期 (2006-01-02)，需同時提供或同時為空
//	kind: deposit / withdrawal / full_withdrawal，空字串表示全部
//
// 回傳:
//
//	domain.StatementQuery: 查詢條件 (日期以 time.Local 解析)
//	error: 包裝 ErrInvalidQuery
func ParseStatementQuery(from, to, kind string) (domain.StatementQuery, error) {
	var q domain.StatementQuery
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	if (from == "") != (to == "") {
		return q, fmt.Errorf("%w: from and to must be given together", ErrInvalidQuery)
	}
	if from != "" {
		start, err := time.ParseInLocation(DateLayout, from, time.Local)
		if err != nil {
			return q, fmt.Errorf("%w: from: %v", ErrInvalidQuery, err)
		}
		end, err := time.ParseInLocation(DateLayout, to, time.Local)
		if err != nil {
			return q, fmt.Errorf("%w: to: %v", ErrInvalidQuery, err)
		}
		if end.Before(start) {
			return q, fmt.Errorf("%w: to is before from", ErrInvalidQuery)
		}
		q.StartDate, q.EndDate = start, end
	}

	if strings.TrimSpace(kind) != "" {
		k, err := domain.ParseTransactionKind(kind)
		if err != nil {
			return q, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		q.Kind = k
	}
	return q, nil
}
