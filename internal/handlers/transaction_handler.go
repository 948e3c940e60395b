package handlers

import (
	"net/http"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/services"
)

type TransactionHandler struct {
	transactions TransactionService
	resolution   ResolutionService
}

func NewTransactionHandler(transactions TransactionService, resolution ResolutionService) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		resolution:   resolution,
	}
}

// ListTransactions supports the status, batch_id, limit and offset query parameters.
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "account_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var q services.TransactionQuery
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseTransactionStatus(raw)
		if err != nil {
			respondWithServiceError(w, r, apperrors.Validationf("%v", err))
			return
		}
		q.Status = status
	}
	if q.BatchID, err = queryID(r, "batch_id"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if q.Offset, err = queryInt(r, "offset"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	list, err := h.transactions.List(r.Context(), callerFrom(r), accountID, q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toBankTransactionResponses(list))
}

// GetTransaction returns the transaction with its audit trail.
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "transaction_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	detail, err := h.transactions.Get(r.Context(), callerFrom(r), transactionID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toTransactionDetailResponse(detail))
}

func (h *TransactionHandler) ManualMatch(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "transaction_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var req ManualMatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	bt, err := h.resolution.ManualMatch(r.Context(), callerFrom(r), transactionID, req.JournalEntryID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toBankTransactionResponse(bt))
}

func (h *TransactionHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "transaction_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	bt, err := h.resolution.Ignore(r.Context(), callerFrom(r), transactionID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toBankTransactionResponse(bt))
}
