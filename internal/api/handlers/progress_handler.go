package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
)

// ProgressHandler serves run progress either as a single JSON snapshot or
// as a Server-Sent Events stream. The stream combines pub/sub events with a
// periodic poll so clients converge even if an event is missed.
type ProgressHandler struct {
	progressRepo repositories.ProgressRepository
	eventBus     providers.EventBus
	pollInterval time.Duration
}

// NewProgressHandler creates a new progress handler. eventBus may be nil;
// streams then rely on polling alone.
func NewProgressHandler(progressRepo repositories.ProgressRepository, eventBus providers.EventBus, pollInterval time.Duration) *ProgressHandler {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &ProgressHandler{
		progressRepo: progressRepo,
		eventBus:     eventBus,
		pollInterval: pollInterval,
	}
}

// GetProgress handles GET /api/assessments/{id}/progress
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	record, err := h.progressRepo.Get(r.Context(), assessmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		h.stream(w, r, record)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

func (h *ProgressHandler) stream(w http.ResponseWriter, r *http.Request, initial *entities.ProgressRecord) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	assessmentID := initial.AssessmentID

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var events <-chan *entities.ProgressRecord
	if h.eventBus != nil {
		channel := providers.GetProgressChannel(assessmentID)
		subscribed, err := h.eventBus.Subscribe(r.Context(), channel)
		if err != nil {
			log.Warn().Err(err).Str("assessment_id", assessmentID).Msg("progress subscription failed, falling back to polling")
		} else {
			events = subscribed
		}
	}

	sendSnapshot(w, initial)
	flusher.Flush()
	if initial.OverallStatus.Terminal() {
		return
	}
	last := initial.UpdatedAt

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		var record *entities.ProgressRecord

		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			record = event
		case <-ticker.C:
			polled, err := h.progressRepo.Get(r.Context(), assessmentID)
			if err != nil {
				// Record may have expired mid-stream.
				log.Warn().Err(err).Str("assessment_id", assessmentID).Msg("progress poll failed, closing stream")
				return
			}
			record = polled
		}

		if record == nil || !record.UpdatedAt.After(last) {
			continue
		}
		last = record.UpdatedAt

		sendSnapshot(w, record)
		flusher.Flush()

		if record.OverallStatus.Terminal() {
			return
		}
	}
}

func sendSnapshot(w http.ResponseWriter, record *entities.ProgressRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal progress snapshot")
		return
	}
	fmt.Fprintf(w, "event: progress\n")
	fmt.Fprintf(w, "data: %s\n\n", data)
}
