package handlers

import (
	"net/http"

	"bank-reconciliation-service/internal/services"
)

type BankAccountHandler struct {
	accounts BankAccountService
}

func NewBankAccountHandler(accounts BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{accounts: accounts}
}

func (h *BankAccountHandler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateBankAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	account, err := h.accounts.Create(r.Context(), callerFrom(r), services.CreateBankAccountInput{
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		IBAN:           req.IBAN,
		AccountType:    req.AccountType,
		Currency:       req.Currency,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toBankAccountResponse(account))
}

func (h *BankAccountHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context(), callerFrom(r))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	out := make([]BankAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toBankAccountResponse(a))
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *BankAccountHandler) GetBankAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "account_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	account, err := h.accounts.Get(r.Context(), callerFrom(r), accountID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toBankAccountResponse(account))
}
