package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// transactionRequest is the write payload. Amount is a decimal string
// ("12.34" or "12,34"); the comma form matches what European users type.
type transactionRequest struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Notes       string `json:"notes,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		Category:    tx.Category,
		AmountCents: tx.Amount.Cents,
		Amount:      tx.Amount.String(),
		Date:        tx.OccurredOn.String(),
		Notes:       tx.Notes,
	}
}

// parseTransaction turns a request payload into a validated-shape domain
// transaction. Validation proper happens in the service.
func parseTransaction(owner string, req transactionRequest) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		OwnerID:    owner,
		Kind:       core.Kind(strings.TrimSpace(req.Kind)),
		Category:   sanitizeInput(req.Category),
		Amount:     core.Money{Cents: cents},
		OccurredOn: date,
		Notes:      sanitizeInput(req.Notes),
	}, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	tx, err := parseTransaction(owner, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.bumpOwnerEpoch(owner)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	txs, err := s.transactions.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	tx, err := s.transactions.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	tx, err := parseTransaction(owner, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = id

	if err := s.transactions.Update(r.Context(), tx); err != nil {
		writeError(w, r, err)
		return
	}

	s.bumpOwnerEpoch(owner)
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-Owner-ID header"})
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	if err := s.transactions.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.bumpOwnerEpoch(owner)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
