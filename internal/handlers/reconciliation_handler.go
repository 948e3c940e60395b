package handlers

import (
	"net/http"
)

type ReconciliationHandler struct {
	reconciliationService ReconciliationService
}

func NewReconciliationHandler(reconciliationService ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// AutoMatch runs one matching pass over the account's pending transactions.
// A run already in progress for the same account yields 409.
func (h *ReconciliationHandler) AutoMatch(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "account_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	result, err := h.reconciliationService.AutoMatch(r.Context(), callerFrom(r), accountID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
