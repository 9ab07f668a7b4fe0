// Package handlers - Saga status HTTP handler.
//
// The handler is strictly read-only: it exposes SagaStore.Load for
// operator and support-tooling lookups. Nothing here ever writes saga
// state - transitions only ever happen through the inbound dispatcher.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wallethub/eventcore/internal/adapters/http/common"
	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/saga"
	"github.com/gin-gonic/gin"
)

// SagaStore is the subset of ports.SagaStore the handler depends on.
type SagaStore interface {
	Load(ctx context.Context, sagaID string) (*saga.Instance, error)
}

// SagaHandler serves read-only saga instance lookups.
type SagaHandler struct {
	store SagaStore
}

// NewSagaHandler builds a SagaHandler. store may be nil, in which case
// every request reports the saga store as unavailable rather than
// panicking - mirrors how HealthHandler treats a nil *pgxpool.Pool.
func NewSagaHandler(store SagaStore) *SagaHandler {
	return &SagaHandler{store: store}
}

// SagaTransitionDTO mirrors one saga.TransitionRecord for the wire.
type SagaTransitionDTO struct {
	From       string    `json:"from"`
	Event      string    `json:"event"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SagaDTO is the read-only wire shape of a saga.Instance.
type SagaDTO struct {
	SagaID        string              `json:"saga_id"`
	State         string              `json:"state"`
	Version       int64               `json:"version"`
	StartedAt     time.Time           `json:"started_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	LastEventType string              `json:"last_event_type"`
	History       []SagaTransitionDTO `json:"history"`
}

func toSagaDTO(inst *saga.Instance) SagaDTO {
	history := make([]SagaTransitionDTO, 0, len(inst.History))
	for _, rec := range inst.History {
		history = append(history, SagaTransitionDTO{
			From:       string(rec.From),
			Event:      string(rec.Event),
			To:         string(rec.To),
			OccurredAt: rec.OccurredAt,
		})
	}
	return SagaDTO{
		SagaID:        inst.SagaID,
		State:         string(inst.State),
		Version:       inst.Version,
		StartedAt:     inst.StartedAt,
		UpdatedAt:     inst.UpdatedAt,
		LastEventType: inst.LastEventType,
		History:       history,
	}
}

// GetSaga handles GET /sagas/:id.
//
// @Summary Get saga instance
// @Description Read-only lookup of a saga's current state and history
// @Tags Saga
// @Produce json
// @Param id path string true "Saga ID (the workflow's correlation id)"
// @Success 200 {object} SagaDTO
// @Failure 404 {object} common.APIError
// @Failure 503 {object} common.APIError
// @Router /sagas/{id} [get]
func (h *SagaHandler) GetSaga(c *gin.Context) {
	if h.store == nil {
		common.Error(c, http.StatusServiceUnavailable, &common.APIError{
			Code:    common.ErrCodeUnavailable,
			Message: "saga store not configured on this process",
		})
		return
	}

	sagaID := c.Param("id")
	inst, err := h.store.Load(c.Request.Context(), sagaID)
	if err != nil {
		if errors.Is(err, ports.ErrSagaNotFound) {
			common.Error(c, http.StatusNotFound, &common.APIError{
				Code:    common.ErrCodeNotFound,
				Message: "saga instance not found",
			})
			return
		}
		common.Error(c, http.StatusInternalServerError, &common.APIError{
			Code:    common.ErrCodeInternal,
			Message: "failed to load saga instance",
		})
		return
	}

	common.Success(c, http.StatusOK, toSagaDTO(inst))
}
