package handlers

import (
	"errors"
	"net/http"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/services"
)

// multipartMemory is how much of an upload is held in memory before spilling
// to a temporary file.
const multipartMemory = 1 << 20

// StatementHandler serves statement uploads and the import batches they create.
type StatementHandler struct {
	imports        ImportService
	batches        BatchService
	maxUploadBytes int64
	listLimit      func(int) int
}

func NewStatementHandler(imports ImportService, batches BatchService, maxUploadBytes int64, listLimit func(int) int) *StatementHandler {
	return &StatementHandler{
		imports:        imports,
		batches:        batches,
		maxUploadBytes: maxUploadBytes,
		listLimit:      listLimit,
	}
}

// UploadStatement imports the multipart "file" field into the account.
func (h *StatementHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "account_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Statement file is too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithServiceError(w, r, apperrors.Validationf("statement file is required in form field \"file\""))
		return
	}
	defer file.Close()

	result, err := h.imports.ImportStatement(r.Context(), callerFrom(r), services.ImportRequest{
		AccountID: accountID,
		FileName:  header.Filename,
		Content:   file,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toImportResponse(result))
}

func (h *StatementHandler) ListImportBatches(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "account_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	batches, err := h.batches.ListBatches(r.Context(), callerFrom(r), accountID, h.listLimit(limit))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	out := make([]ImportBatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toImportBatchResponse(b))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// GetImportBatch returns the batch with counts recomputed from its transactions.
func (h *StatementHandler) GetImportBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := pathID(r, "batch_id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	summary, err := h.batches.Summary(r.Context(), callerFrom(r), batchID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BatchSummaryResponse{
		Batch:  toImportBatchResponse(summary.Batch),
		Counts: summary.Counts,
	})
}
