package category

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/detroitcommons/commons/internal/category"
	"github.com/detroitcommons/commons/internal/http/respond"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Merchant          string `json:"merchant"`
	PreferredCategory string `json:"preferred_category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	merchant := r.URL.Query().Get("merchant")
	if merchant == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "merchant query parameter is required")
		return
	}

	preferred, err := h.svc.Suggest(r.Context(), merchant)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		Merchant:          merchant,
		PreferredCategory: preferred,
	})
}

type learnRequest struct {
	MerchantPattern   string `json:"merchant_pattern"`
	PreferredCategory string `json:"preferred_category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}

	if req.MerchantPattern == "" || req.PreferredCategory == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "merchant_pattern and preferred_category are required")
		return
	}

	if err := h.svc.Learn(r.Context(), req.MerchantPattern, req.PreferredCategory); err != nil {
		respond.DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
