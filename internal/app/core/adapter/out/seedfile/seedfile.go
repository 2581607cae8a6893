package seedfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/pkg/jsonl"
)

// ErrInvalidSeed seed 資料不合法
var ErrInvalidSeed = errors.New("invalid seed transaction")

// 沒有時區的時間格式，以 time.Local 解析
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// record 檔案中一行的格式
//
//	{"timestamp":"2025-01-16T10:30:00+01:00","description":"Salary","amount":"11000","kind":"deposit"}
type record struct {
	Timestamp   string                 `json:"timestamp"`
	Description string                 `json:"description,omitempty"`
	Amount      decimal.Decimal        `json:"amount"`
	Kind        domain.TransactionKind `json:"kind"`
}

// Load 讀取 seed 檔
//
// 參數:
//
//	path: JSON lines 檔案路徑
//
// 回傳:
//
//	[]domain.SeedTransaction: 依檔案順序排列的 seed
//	error: 檔案無法開啟或任一筆資料不合法
func Load(path string) ([]domain.SeedTransaction, error) {
	f, err := jsonl.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	seeds := make([]domain.SeedTransaction, 0)
	err = f.ReadAll(func(index int, raw []byte) error {
		seed, err := decodeRecord(index, raw)
		if err != nil {
			return err
		}
		seeds = append(seeds, seed)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return seeds, nil
}

// Decode 從 r 讀取 seed
func Decode(r io.Reader) ([]domain.SeedTransaction, error) {
	seeds := make([]domain.SeedTransaction, 0)
	err := jsonl.Decode(r, func(index int, raw []byte) error {
		seed, err := decodeRecord(index, raw)
		if err != nil {
			return err
		}
		seeds = append(seeds, seed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeds, nil
}

func decodeRecord(index int, raw []byte) (domain.SeedTransaction, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.SeedTransaction{}, fmt.Errorf("%w: record %d: %w", ErrInvalidSeed, index, err)
	}
	if !rec.Kind.Valid() {
		return domain.SeedTransaction{}, fmt.Errorf("%w: record %d: missing kind", ErrInvalidSeed, index)
	}
	ts, err := ParseTimestamp(rec.Timestamp)
	if err != nil {
		return domain.SeedTransaction{}, fmt.Errorf("%w: record %d: %w", ErrInvalidSeed, index, err)
	}
	return domain.SeedTransaction{
		Timestamp:   ts,
		Description: rec.Description,
		Amount:      rec.Amount,
		Kind:        rec.Kind,
	}, nil
}

// ParseTimestamp 解析 RFC3339 或不含時區的 "2006-01-02 15:04" 格式
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

func toRecords(history []domain.Transaction) []record {
	records := make([]record, 0, len(history))
	for _, tran := range history {
		records = append(records, record{
			Timestamp:   tran.Timestamp.Format(time.RFC3339Nano),
			Description: tran.Description,
			Amount:      tran.Amount,
			Kind:        tran.Kind,
		})
	}
	return records
}

// Write 將交易紀錄輸出為 seed 格式，重放後可得到相同的帳本
func Write(w io.Writer, history []domain.Transaction) error {
	return jsonl.Encode(w, toRecords(history))
}

// Export 將交易紀錄寫成 seed 檔 (覆寫既有檔案)
func Export(path string, history []domain.Transaction) error {
	f, err := jsonl.Create(path)
	if err != nil {
		return fmt.Errorf("create seed file: %w", err)
	}
	return exportTo(path, f, history)
}

// recordSink jsonl.File 的寫入端
type recordSink interface {
	Append(v any) error
	Close() error
}

// exportTo 寫完後關檔，關檔失敗也算寫入失敗
func exportTo(path string, f recordSink, history []domain.Transaction) (err error) {
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close seed file %s: %w", path, closeErr)
		}
	}()

	for _, rec := range toRecords(history) {
		if err := f.Append(rec); err != nil {
			return fmt.Errorf("write seed file %s: %w", path, err)
		}
	}
	return nil
}
