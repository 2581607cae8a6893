package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

// Metrics 帳本相關的 prometheus 指標
// nil *Metrics 可以安全呼叫，所有方法皆為 no-op
type Metrics struct {
	mutations  *prometheus.CounterVec
	balance    prometheus.Gauge
	statements *prometheus.CounterVec
}

// NewMetrics 建立並註冊指標
//
// 參數:
//
//	reg: 註冊目標，測試時可傳入 prometheus.NewRegistry()
//
// 回傳:
//
//	*Metrics: 指標集合
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Number of ledger mutations by operation and outcome status.",
		}, []string{"operation", "status"}),
		balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_balance",
			Help: "Current account balance.",
		}),
		statements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_statements_total",
			Help: "Number of statements built by transaction kind filter.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeOutcome(o domain.Outcome) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(o.Kind.String(), o.Status.String()).Inc()
	m.setBalance(o.Balance)
}

func (m *Metrics) setBalance(d decimal.Decimal) {
	if m == nil {
		return
	}
	m.balance.Set(d.InexactFloat64())
}

func (m *Metrics) observeStatement(kind domain.TransactionKind) {
	if m == nil {
		return
	}
	label := kind.String()
	if label == "" {
		label = "all"
	}
	m.statements.WithLabelValues(label).Inc()
}

// Mutations 交易計數器
func (m *Metrics) Mutations() *prometheus.CounterVec { return m.mutations }

// Balance 餘額 gauge
func (m *Metrics) Balance() prometheus.Gauge { return m.balance }

// Statements 對帳單計數器
func (m *Metrics) Statements() *prometheus.CounterVec { return m.statements }
