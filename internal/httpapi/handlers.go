package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NgigiN/fundfusion/internal/cooldown"
	"github.com/NgigiN/fundfusion/internal/funds"
	"github.com/NgigiN/fundfusion/internal/ledger"
	"github.com/NgigiN/fundfusion/internal/wallet"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type categoryRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type portfolioResponse struct {
	ledger.Snapshot
	ChangePercent decimal.Decimal  `json:"totalChangePercent"`
	NextBadge     string           `json:"nextBadge,omitempty"`
	NextBadgeAt   *decimal.Decimal `json:"nextBadgeAt,omitempty"`
}

type cooldownResponse struct {
	Active           bool    `json:"active"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	connected := s.funds.Portfolio().WalletAddress != ""
	resp := map[string]interface{}{
		"status":           "healthy",
		"uptime":           time.Since(s.startTime).Round(time.Second).String(),
		"wallet_connected": connected,
		"timestamp":        time.Now().Format(time.RFC3339),
	}
	if s.BotConnected != nil {
		resp["discord_connected"] = s.BotConnected()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) portfolio(w http.ResponseWriter, r *http.Request) {
	snap := s.funds.Portfolio()
	resp := portfolioResponse{
		Snapshot:      snap,
		ChangePercent: snap.TotalChangePercent(),
	}
	if next, threshold, ok := snap.BadgeLevel.Next(); ok {
		resp.NextBadge = next.String()
		resp.NextBadgeAt = &threshold
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.TxType(r.URL.Query().Get("type"))
	switch filter {
	case "", ledger.Deposit, ledger.Withdrawal:
	default:
		writeError(w, http.StatusBadRequest, "type must be deposit or withdrawal")
		return
	}
	writeJSON(w, http.StatusOK, s.funds.History(filter))
}

func (s *Server) withdrawalHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.funds.History(ledger.Withdrawal))
}

func (s *Server) monthlyFlow(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		since = t
	}
	writeJSON(w, http.StatusOK, s.funds.MonthlyFlow(since))
}

func (s *Server) cooldown(w http.ResponseWriter, r *http.Request) {
	left, err := s.funds.CooldownRemaining(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cooldownResponse{Active: left > 0, RemainingSeconds: left.Seconds()})
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	addr, err := s.funds.Connect(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"walletAddress": addr})
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.funds.Disconnect(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, s.funds.Deposit)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, s.funds.Withdraw)
}

func (s *Server) move(w http.ResponseWriter, r *http.Request, op func(context.Context, decimal.Decimal) (ledger.Transaction, error)) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := op(r.Context(), req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) allocate(w http.ResponseWriter, r *http.Request) {
	s.categoryOp(w, r, s.funds.Allocate)
}

func (s *Server) revalue(w http.ResponseWriter, r *http.Request) {
	s.categoryOp(w, r, s.funds.Revalue)
}

func (s *Server) categoryOp(w http.ResponseWriter, r *http.Request, op func(string, decimal.Decimal) error) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := op(req.Category, req.Amount); err != nil {
		s.fail(w, r, err)
		return
	}
	s.portfolio(w, r)
}

// fail maps service errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var active *cooldown.ActiveError
	var walletErr *funds.WalletError

	switch {
	case errors.As(err, &active):
		secs := int(math.Ceil(active.Remaining.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, funds.ErrMissingInput),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, funds.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &walletErr) && errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &walletErr), errors.Is(err, wallet.ErrRejected):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
