package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// NoteRenderer writes the printable delivery note.
type NoteRenderer interface {
	DeliveryNote(w io.Writer, view *model.DeliveryNoteView) error
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service        service.OrderService
	renderer       NoteRenderer
	maxAttachBytes int64
	logger         zerolog.Logger
}

type updateStatusRequest struct {
	OrderID   string `json:"orderId"`
	NewStatus string `json:"newStatus"`
}

type approvalsRequest struct {
	Updates []model.ApprovalUpdate `json:"updates"`
}

// NewOrderHandler creates a new order handler. Attachment uploads larger than
// maxAttachBytes are rejected.
func NewOrderHandler(service service.OrderService, renderer NoteRenderer, maxAttachBytes int64, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:        service,
		renderer:       renderer,
		maxAttachBytes: maxAttachBytes,
		logger:         logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/order/create requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.AddressID == "" {
		writeError(w, r, missingField("addressId"), h.logger)
		return
	}

	order, err := h.service.SubmitOrder(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// MyOrders handles GET /api/order/my-orders requests.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.MyOrders(r.Context(), actor)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// AllOrders handles GET /api/order/all-orders requests.
func (h *OrderHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.AllOrders(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/order/{orderId} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), actor, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/order/update-status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	switch {
	case req.OrderID == "":
		writeError(w, r, missingField("orderId"), h.logger)
		return
	case req.NewStatus == "":
		writeError(w, r, missingField("newStatus"), h.logger)
		return
	}

	order, err := h.service.SetStatus(r.Context(), actor, req.OrderID, req.NewStatus)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/order/delete/{orderId} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.DeleteOrder(r.Context(), actor, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateApprovedQuantities handles PUT /api/order/{orderId}/update-approved-qty.
func (h *OrderHandler) UpdateApprovedQuantities(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req approvalsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Updates == nil {
		writeError(w, r, missingField("updates"), h.logger)
		return
	}

	order, err := h.service.ApplyApprovals(r.Context(), actor, chi.URLParam(r, "orderId"), req.Updates)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateNote handles PUT /api/order/{orderId}/invoice-suratjalan.
func (h *OrderHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.DeliveryNoteUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	note, err := h.service.UpdateNote(r.Context(), actor, chi.URLParam(r, "orderId"), req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// NoteNumber handles POST /api/order/{orderId}/surat-jalan/number.
func (h *OrderHandler) NoteNumber(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.EnsureNoteNumber(r.Context(), actor, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order.DeliveryNote)
}

// Note handles GET /api/order/{orderId}/surat-jalan. With ?format=html the
// printable document is returned instead of JSON. A note without a number is
// numbered first, so this GET can write to the order and advance the monthly
// counter; repeated calls return the same number.
func (h *OrderHandler) Note(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.RenderNote(r.Context(), actor, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if r.URL.Query().Get("format") != "html" {
		writeJSON(w, http.StatusOK, view)
		return
	}

	// Render into a buffer so a template failure can still produce an error body.
	var buf bytes.Buffer
	if err := h.renderer.DeliveryNote(&buf, view); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// AttachNote handles PUT /api/order/{orderId}/surat-jalan/attachment. The
// request body is the raw file.
func (h *OrderHandler) AttachNote(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID := chi.URLParam(r, "orderId")
	filename := path.Base(r.URL.Query().Get("filename"))
	if filename == "." || filename == "/" {
		filename = orderID + ".pdf"
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxAttachBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Error:   model.ErrCodeAttachmentTooBig,
				Message: fmt.Sprintf("Attachment exceeds %d bytes", tooBig.Limit),
			})
			return
		}
		writeError(w, r, fmt.Errorf("failed to read attachment: %w", err), h.logger)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	note, err := h.service.AttachNoteFile(r.Context(), actor, orderID, service.NoteFile{
		Filename:    filename,
		ContentType: contentType,
		Body:        body,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, note)
}
