package handlers

import (
	"net/http"

	"github.com/zzzzzahd/draft-play-interno/middleware"
	"github.com/zzzzzahd/draft-play-interno/services"
)

type ConfirmationHandler struct {
	confirmationService services.ConfirmationService
}

func NewConfirmationHandler(confirmationService services.ConfirmationService) *ConfirmationHandler {
	return &ConfirmationHandler{confirmationService: confirmationService}
}

// Confirm отмечает присутствие текущего пользователя на сегодня.
func (h *ConfirmationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
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

	confirmation, err := h.confirmationService.Confirm(r.Context(), babaID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"confirmation": confirmation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Cancel снимает подтверждение; после дедлайна отмена невозможна.
func (h *ConfirmationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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

	if err := h.confirmationService.Cancel(r.Context(), babaID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ConfirmationHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	confirmations, err := h.confirmationService.ListForToday(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"confirmations": confirmations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Window сообщает состояние окна подтверждений: открыто ли, дедлайн и
// число подтвердившихся.
func (h *ConfirmationHandler) Window(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	window, err := h.confirmationService.WindowForToday(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"window": window}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
