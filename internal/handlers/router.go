package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"bank-reconciliation-service/internal/config"
)

func SetupRouter(svc Services, cfg *config.Config, logger *slog.Logger) (*mux.Router, error) {
	rateLimit, err := rateLimitMiddleware(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.Use(rateLimit)
	api.Use(authMiddleware(cfg.Auth))

	accounts := NewBankAccountHandler(svc.Accounts)
	statements := NewStatementHandler(svc.Imports, svc.Batches, cfg.Import.MaxUploadBytes, svc.Transactions.ClampLimit)
	transactions := NewTransactionHandler(svc.Transactions, svc.Resolution)
	reconciliation := NewReconciliationHandler(svc.Reconciliation)

	api.HandleFunc("/bank-accounts", accounts.CreateBankAccount).Methods(http.MethodPost)
	api.HandleFunc("/bank-accounts", accounts.ListBankAccounts).Methods(http.MethodGet)
	api.HandleFunc("/bank-accounts/{account_id:[0-9]+}", accounts.GetBankAccount).Methods(http.MethodGet)

	api.HandleFunc("/bank-accounts/{account_id:[0-9]+}/statements", statements.UploadStatement).Methods(http.MethodPost)
	api.HandleFunc("/bank-accounts/{account_id:[0-9]+}/import-batches", statements.ListImportBatches).Methods(http.MethodGet)
	api.HandleFunc("/import-batches/{batch_id:[0-9]+}", statements.GetImportBatch).Methods(http.MethodGet)

	api.HandleFunc("/bank-accounts/{account_id:[0-9]+}/transactions", transactions.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{transaction_id:[0-9]+}", transactions.GetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{transaction_id:[0-9]+}/manual-match", transactions.ManualMatch).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{transaction_id:[0-9]+}/ignore", transactions.Ignore).Methods(http.MethodPost)

	api.HandleFunc("/bank-accounts/{account_id:[0-9]+}/auto-match", reconciliation.AutoMatch).Methods(http.MethodPost)

	return router, nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "healthy",
	}
	respondWithJSON(w, http.StatusOK, response)
}
