package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// StreamService defines the behavior needed by StreamHandler.
type StreamService interface {
	AddStream(ctx context.Context, input usecase.AddStreamInput) (*domain.IncomeStream, error)
	UpdateStream(ctx context.Context, input usecase.UpdateStreamInput) (*domain.IncomeStream, error)
	DeleteStream(ctx context.Context, id string) error
	GetStream(ctx context.Context, id string) (*domain.IncomeStream, error)
	ListStreams(ctx context.Context) ([]*domain.IncomeStream, error)
	SetDistribution(ctx context.Context, streamID string, percentages map[domain.Bucket]decimal.Decimal) (*domain.Distribution, error)
	GetDistribution(ctx context.Context, streamID string) (*domain.Distribution, error)
	ComputeAllocations(ctx context.Context, streamID string) (*domain.Allocation, error)
	ComputeTotals(ctx context.Context) (*usecase.AllocationTotals, error)
}

// StreamHandler handles income stream and allocation requests.
type StreamHandler struct {
	streamUC StreamService
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(streamUC StreamService) *StreamHandler {
	return &StreamHandler{streamUC: streamUC}
}

// Create adds an income stream.
func (h *StreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStreamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	stream, err := h.streamUC.AddStream(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add stream", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.StreamFromDomain(stream))
}

// List lists income streams in creation order.
func (h *StreamHandler) List(w http.ResponseWriter, r *http.Request) {
	streams, err := h.streamUC.ListStreams(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list streams", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListStreamsResponse{
		Streams: dto.StreamsFromDomain(streams),
		Total:   len(streams),
	})
}

// Get retrieves a stream by ID.
func (h *StreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing stream ID", "")
		return
	}

	stream, err := h.streamUC.GetStream(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get stream", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StreamFromDomain(stream))
}

// Update changes the name or amount of a stream.
func (h *StreamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing stream ID", "")
		return
	}

	var req dto.UpdateStreamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	stream, err := h.streamUC.UpdateStream(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update stream", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StreamFromDomain(stream))
}

// Delete removes a stream and its distribution.
func (h *StreamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing stream ID", "")
		return
	}

	if err := h.streamUC.DeleteStream(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete stream", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDistribution replaces the bucket percentages of a stream.
func (h *StreamHandler) SetDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing stream ID", "")
		return
	}

	var req dto.SetDistributionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	d, err := h.streamUC.SetDistribution(r.Context(), id, req.ToDomain())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set distribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionFromDomain(d))
}

// GetDistribution returns the bucket percentages of a stream.
func (h *StreamHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing stream ID", "")
		return
	}

	d, err := h.streamUC.GetDistribution(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get distribution", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionFromDomain(d))
}

// Allocations splits a stream's amount across the buckets.
func (h *StreamHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing stream ID", "")
		return
	}

	a, err := h.streamUC.ComputeAllocations(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute allocations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationFromDomain(a))
}

// Totals sums the allocations of every stream.
func (h *StreamHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.streamUC.ComputeTotals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute totals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TotalsFromUseCase(totals))
}
