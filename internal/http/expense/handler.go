package expense

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/detroitcommons/commons/internal/expense"
	"github.com/detroitcommons/commons/internal/http/middleware"
	"github.com/detroitcommons/commons/internal/http/respond"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc       *expense.Service
	adminAuth func(http.Handler) http.Handler
}

func NewHandler(svc *expense.Service, adminAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{svc: svc, adminAuth: adminAuth}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/images", h.listImages)
	r.Post("/{id}/images", h.attachImage)

	r.Group(func(r chi.Router) {
		r.Use(h.adminAuth)
		r.Post("/receipt", h.submitFromReceipt)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
		r.Post("/{id}/payout", h.payout)
		r.Patch("/images/{imageID}", h.updateImage)
		r.Delete("/images/{imageID}", h.deleteImage)
	})
}

type submitRequest struct {
	Title       string `json:"title"`
	Merchant    string `json:"merchant"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	ExpenseDate string `json:"expense_date"`

	PayoutAddress string `json:"payout_address"`

	SubmittedBy     *int64 `json:"submitted_by,omitempty"`
	ModificationKey string `json:"modification_key,omitempty"`
	SubmitterName   string `json:"submitter_name,omitempty"`
	SubmitterEmail  string `json:"submitter_email,omitempty"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}

	params := expense.SubmitParams{
		Title:           req.Title,
		Merchant:        req.Merchant,
		Category:        req.Category,
		Notes:           req.Notes,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		PayoutAddress:   req.PayoutAddress,
		SubmittedBy:     req.SubmittedBy,
		ModificationKey: req.ModificationKey,
		SubmitterName:   req.SubmitterName,
		SubmitterEmail:  req.SubmitterEmail,
	}

	if req.ExpenseDate != "" {
		d, err := time.Parse(time.DateOnly, req.ExpenseDate)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "expense_date: must be YYYY-MM-DD")
			return
		}

		params.ExpenseDate = &d
	}

	e, err := h.svc.Submit(r.Context(), params)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

type receiptResponse struct {
	Expense  expenseResponse          `json:"expense"`
	Analysis *expense.ReceiptAnalysis `json:"analysis"`
}

func (h *Handler) submitFromReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "receipt file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "failed to read file: "+err.Error())
		return
	}

	e, result, err := h.svc.SubmitFromReceipt(
		r.Context(), data, header.Filename,
		header.Header.Get("Content-Type"), middleware.Identity(r.Context()),
	)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, receiptResponse{Expense: toResponse(e), Analysis: result})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := expense.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := expense.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("submitted_by"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "submitted_by: must be an integer id")
			return
		}

		filter.SubmitterID = &id
	}

	expenses, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(expenses))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	e, err := h.svc.Approve(r.Context(), id, middleware.Identity(r.Context()))
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if r.Body != nil {
		// Reason is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	e, err := h.svc.Reject(r.Context(), id, middleware.Identity(r.Context()), req.Reason)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

type payoutRequest struct {
	TxHash string `json:"tx_hash"`
}

func (h *Handler) payout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req payoutRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	e, err := h.svc.RecordPayout(r.Context(), id, req.TxHash)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) listImages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	images, err := h.svc.ListImages(r.Context(), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toImageResponseList(images))
}

func (h *Handler) attachImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "image file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "failed to read file: "+err.Error())
		return
	}

	img, err := h.svc.AttachImage(
		r.Context(), id, data, header.Filename,
		header.Header.Get("Content-Type"),
		r.FormValue("description"), r.FormValue("uploaded_by"),
	)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toImageResponse(img))
}

type updateImageRequest struct {
	Description *string `json:"description,omitempty"`
	ImageType   *string `json:"image_type,omitempty"`
}

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "imageID")
	if !ok {
		return
	}

	var req updateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}

	img, err := h.svc.UpdateImage(r.Context(), id, req.Description, req.ImageType)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toImageResponse(img))
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "imageID")
	if !ok {
		return
	}

	if err := h.svc.DeleteImage(r.Context(), id); err != nil {
		respond.DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "invalid id")
		return 0, false
	}

	return id, true
}
