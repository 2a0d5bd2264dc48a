package member

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/detroitcommons/commons/internal/http/respond"
	"github.com/detroitcommons/commons/internal/member"
)

// Header carrying the caller's modification key for self-service edits.
const modificationKeyHeader = "X-Modification-Key"

type Handler struct {
	svc *member.Service
}

func NewHandler(svc *member.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
}

type memberResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Returned exactly once, on creation.
	ModificationKey string `json:"modification_key,omitempty"`
}

func toResponse(m *member.Member, includeKey bool) memberResponse {
	resp := memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Bio:       m.Bio,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if includeKey {
		resp.ModificationKey = m.ModificationKey
	}

	return resp
}

type createRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Bio   *string `json:"bio,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}

	m, err := h.svc.Create(r.Context(), member.CreateParams{
		Name:  req.Name,
		Email: req.Email,
		Bio:   req.Bio,
	})
	if err != nil {
		if err == member.ErrDuplicate {
			respond.Error(w, http.StatusConflict, respond.CodeValidation, err.Error())
			return
		}

		respond.DomainError(w, err)

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(m, true))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(m, false))
}

type updateRequest struct {
	Name *string `json:"name,omitempty"`
	Bio  *string `json:"bio,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}

	m, err := h.svc.Update(r.Context(), id, r.Header.Get(modificationKeyHeader), member.UpdateParams{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(m, false))
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "invalid id")
		return 0, false
	}

	return id, true
}
