package handlers

import (
	"errors"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/services"
)

type DrawHandler struct {
	drawService services.DrawService
	scheduler   *services.AutoDrawScheduler
	clock       clockwork.Clock
}

func NewDrawHandler(drawService services.DrawService, scheduler *services.AutoDrawScheduler, clock clockwork.Clock) *DrawHandler {
	return &DrawHandler{drawService: drawService, scheduler: scheduler, clock: clock}
}

// GetToday возвращает жеребьёвку текущей даты. Если автоматическая
// жеребьёвка не состоялась, в ответ попадает причина отказа.
func (h *DrawHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draw, err := h.drawService.GetForToday(r.Context(), babaID)
	if err != nil {
		if errors.Is(err, services.ErrNoDrawToday) && h.scheduler != nil {
			today := engine.GameDate(h.clock.Now())
			if reason, failed := h.scheduler.LastFailure(babaID, today); failed {
				errorResponse(w, r, http.StatusNotFound, jsonResponse{
					"message": "no draw for today",
					"reason":  reason,
				})
				return
			}
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draw": draw}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
