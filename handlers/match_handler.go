package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/middleware"
	"github.com/zzzzzahd/draft-play-interno/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// StartSession запускает игровую сессию из сегодняшней жеребьёвки.
func (h *MatchHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, h.matchService.StartSession)
}

func (h *MatchHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.GetSession(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Goal фиксирует гол в текущем матче.
func (h *MatchHandler) Goal(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Team     string `json:"team"`
		ScorerID int    `json:"scorer_id"`
		AssistID *int   `json:"assist_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	side, err := parseSide(input.Team)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ScorerID <= 0 {
		badRequestResponse(w, r, errors.New("scorer_id is required"))
		return
	}

	state, err := h.matchService.Goal(r.Context(), babaID, services.GoalInput{
		Side:     side,
		ScorerID: input.ScorerID,
		AssistID: input.AssistID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, h.matchService.PauseSession)
}

func (h *MatchHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, h.matchService.ResumeSession)
}

// ForceEndMatch завершает текущий матч с текущим счётом.
func (h *MatchHandler) ForceEndMatch(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, h.matchService.ForceEndMatch)
}

// EndSession завершает сессию целиком.
func (h *MatchHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.EndSession(r.Context(), babaID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Redraw отбрасывает текущую жеребьёвку и сессию и проводит новую
// жеребьёвку (только президент).
func (h *MatchHandler) Redraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draw, err := h.matchService.ForceRedraw(r.Context(), babaID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"draw": draw}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatchesForToday(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// sessionAction — общий каркас для операций над сессией, которые
// требуют пользователя и возвращают её состояние.
func (h *MatchHandler) sessionAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, babaID, userID int) (engine.SessionState, error),
) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := action(r.Context(), babaID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseSide(team string) (engine.Side, error) {
	switch team {
	case "team_a", "a", "A":
		return engine.SideA, nil
	case "team_b", "b", "B":
		return engine.SideB, nil
	default:
		return 0, fmt.Errorf("unknown team %q, expected team_a or team_b", team)
	}
}
