package console

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

const (
	// DefaultCurrencyGlyph 金額前綴
	DefaultCurrencyGlyph = "€"
	// DefaultTimeLayout 交易時間顯示格式
	DefaultTimeLayout = "2006-01-02 15:04"

	// EmptyTitle 沒有交易且未指定區間時的標題
	EmptyTitle = "No transactions registered for a specified transaction type"
)

// Renderer 將對帳單畫成文字表格
type Renderer struct {
	glyph  string
	layout string
}

// Option 設定 Renderer 的選項
type Option func(*Renderer)

// WithCurrencyGlyph 設定金額前綴符號
func WithCurrencyGlyph(glyph string) Option {
	return func(r *Renderer) {
		if glyph != "" {
			r.glyph = glyph
		}
	}
}

// WithTimeLayout 設定時間格式
func WithTimeLayout(layout string) Option {
	return func(r *Renderer) {
		if layout != "" {
			r.layout = layout
		}
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		glyph:  DefaultCurrencyGlyph,
		layout: DefaultTimeLayout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render 輸出標題與表格
//
// 表格欄位:
//
//	DATE, DESCRIPTION 固定顯示
//	DEPOSIT / WITHDRAWAL / BALANCE 只有對應的合計有值時才顯示
//
// 最後一列為 Totals
func (r *Renderer) Render(w io.Writer, st domain.Statement) error {
	if _, err := fmt.Fprintln(w, r.Title(st)); err != nil {
		return err
	}

	totals := st.Totals
	table := tablewriter.NewWriter(w)
	// 不要讓 tablewriter 改寫大小寫與金額格式
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetFooterAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeader(r.header(totals))

	for _, tran := range st.Transactions {
		row := []string{tran.Timestamp.Format(r.layout), tran.Description}
		if totals.SumOfDeposits.Valid {
			row = append(row, r.amountIf(tran.Kind == domain.TransactionKindDeposit, tran.Amount))
		}
		if totals.SumOfWithdrawals.Valid {
			row = append(row, r.amountIf(tran.Kind.IsWithdrawal(), tran.Amount))
		}
		if totals.Balance.Valid {
			row = append(row, r.money(tran.BalanceAfter))
		}
		table.Append(row)
	}

	footer := []string{"", "Totals:"}
	for _, total := range []decimal.NullDecimal{totals.SumOfDeposits, totals.SumOfWithdrawals, totals.Balance} {
		if total.Valid {
			footer = append(footer, r.money(total.Decimal))
		}
	}
	table.SetFooter(footer)
	table.Render()
	return nil
}

// Title 對帳單標題
// 有指定區間時使用區間，否則使用第一筆與最後一筆交易的時間
func (r *Renderer) Title(st domain.Statement) string {
	if len(st.Transactions) == 0 && (st.RangeStart == nil || st.RangeEnd == nil) {
		return EmptyTitle
	}
	var start, end string
	if st.RangeStart != nil && st.RangeEnd != nil {
		start, end = st.RangeStart.Format(r.layout), st.RangeEnd.Format(r.layout)
	} else {
		start = st.Transactions[0].Timestamp.Format(r.layout)
		end = st.Transactions[len(st.Transactions)-1].Timestamp.Format(r.layout)
	}
	return fmt.Sprintf("Transactions %s - %s", start, end)
}

func (r *Renderer) header(totals domain.SummaryTotals) []string {
	header := []string{"DATE", "DESCRIPTION"}
	if totals.SumOfDeposits.Valid {
		header = append(header, "DEPOSIT")
	}
	if totals.SumOfWithdrawals.Valid {
		header = append(header, "WITHDRAWAL")
	}
	if totals.Balance.Valid {
		header = append(header, "BALANCE")
	}
	return header
}

func (r *Renderer) money(d decimal.Decimal) string {
	return r.glyph + " " + domain.FormatAmount(d)
}

func (r *Renderer) amountIf(show bool, d decimal.Decimal) string {
	if !show {
		return ""
	}
	return r.money(d)
}

var _ usecase.Renderer = (*Renderer)(nil)
