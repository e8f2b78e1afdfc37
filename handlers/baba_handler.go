package handlers

import (
	"errors"
	"net/http"

	"github.com/zzzzzahd/draft-play-interno/middleware"
	"github.com/zzzzzahd/draft-play-interno/services"
)

type BabaHandler struct {
	babaService services.BabaService
}

func NewBabaHandler(babaService services.BabaService) *BabaHandler {
	return &BabaHandler{babaService: babaService}
}

func (h *BabaHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, userName, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateBabaInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	baba, err := h.babaService.CreateBaba(r.Context(), input, userID, userName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"baba": baba}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) Get(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	baba, err := h.babaService.GetBaba(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"baba": baba}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMine возвращает бабы, где пользователь президент или игрок.
func (h *BabaHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	babas, err := h.babaService.ListMyBabas(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"babas": babas}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateBabaInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	baba, err := h.babaService.UpdateBaba(r.Context(), babaID, input, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"baba": baba}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.babaService.DeleteBaba(r.Context(), babaID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Join вступает в баба по инвайт-коду.
func (h *BabaHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, userName, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		InviteCode string `json:"invite_code"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.InviteCode == "" {
		badRequestResponse(w, r, errors.New("invite_code is required"))
		return
	}

	baba, err := h.babaService.JoinByInviteCode(r.Context(), input.InviteCode, userID, userName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"baba": baba}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddPlayer заводит игрока без аккаунта (только президент).
func (h *BabaHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	userID, _, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.babaService.AddPlaceholderPlayer(r.Context(), babaID, input, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.babaService.ListPlayers(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.babaService.ListRankings(r.Context(), babaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) UploadCrest(w http.ResponseWriter, r *http.Request) {
	userID, _, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("crest")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	baba, err := h.babaService.UploadCrest(r.Context(), babaID, contentType, file, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"baba": baba}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BabaHandler) RemoveCrest(w http.ResponseWriter, r *http.Request) {
	userID, _, err := currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.babaService.RemoveCrest(r.Context(), babaID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// currentUser достаёт идентификатор и имя пользователя из токена.
func currentUser(r *http.Request) (int, string, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return 0, "", errors.New("failed to identify current user")
	}
	name, _ := middleware.GetUserNameFromContext(r.Context())
	return userID, name, nil
}
