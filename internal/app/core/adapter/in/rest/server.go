// Package rest 帳本的 HTTP API
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/api"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/seedfile"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

// Server 帳本 HTTP API 伺服器
type Server struct {
	core    *usecase.CoreUseCase
	logger  *zap.Logger
	metrics prometheus.Gatherer
	timeout time.Duration
}

// Option 設定 Server 的選項
type Option func(*Server)

// WithLogger 設定 logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics 開啟 /metrics，資料來源為 g
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// WithTimeout 單一請求的逾時
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer 建立 API 伺服器
func NewServer(core *usecase.CoreUseCase, opts ...Option) *Server {
	s := &Server{
		core:    core,
		logger:  zap.NewNop(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler 回傳掛好所有路由的 chi router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/balance", s.handleBalance)
		r.Get("/transactions", s.handleTransactions)
		r.Get("/transactions/export", s.handleExport)
		r.Get("/statement", s.handleStatement)
		r.Get("/statement/table", s.handleStatementTable)
		r.Post("/deposits", s.handleDeposit)
		r.Post("/withdrawals", s.handleWithdraw)
		r.Post("/withdrawals/full", s.handleWithdrawAll)
	})

	// Prometheus 指標
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.core.Balance(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BalanceReply{Balance: balance, Currency: domain.CurrencyCode})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := s.core.History(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// handleExport 以 seed 檔格式輸出交易紀錄
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	history, err := s.core.History(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if err := seedfile.Write(w, history); err != nil {
		s.logger.Warn("export history", zap.Error(err))
	}
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	q, err := statementQuery(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	st, err := s.core.Statement(r.Context(), q)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleStatementTable(w http.ResponseWriter, r *http.Request) {
	q, err := statementQuery(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.core.PrintStatement(r.Context(), w, q); err != nil {
		s.writeFailure(w, err)
	}
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var in api.MutationRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	outcome, err := s.core.Deposit(r.Context(), in.Amount, in.Description, in.At())
	s.writeOutcome(w, outcome, err)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var in api.MutationRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	outcome, err := s.core.Withdraw(r.Context(), in.Amount, in.Description, in.At())
	s.writeOutcome(w, outcome, err)
}

func (s *Server) handleWithdrawAll(w http.ResponseWriter, r *http.Request) {
	var in api.WithdrawAllRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	outcome, err := s.core.WithdrawAll(r.Context(), in.At())
	s.writeOutcome(w, outcome, err)
}

// writeOutcome 業務結果對應 HTTP 狀態碼
// 成功 201，金額不合法 400，餘額不足 / 無餘額 409
func (s *Server) writeOutcome(w http.ResponseWriter, outcome domain.Outcome, err error) {
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, outcomeStatus(outcome), api.NewMutationReply(outcome))
}

func outcomeStatus(o domain.Outcome) int {
	switch err := o.Err(); {
	case err == nil:
		return http.StatusCreated
	case errors.Is(err, domain.ErrAmountMustBePositive):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrNoFunds):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure 輸入錯誤與基礎設施錯誤對應 HTTP 狀態碼
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case api.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLedgerStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func statementQuery(r *http.Request) (domain.StatementQuery, error) {
	values := r.URL.Query()
	return api.StatementRequest{
		From: values.Get("from"),
		To:   values.Get("to"),
		Kind: values.Get("kind"),
	}.Query()
}

// decodeBody 解析 JSON body，空 body 視為沒有參數
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// logRequests 以 zap 記錄每個請求
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// writeJSON 輸出 JSON 回應
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError 輸出 JSON 錯誤回應
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorReply{Error: msg})
}
