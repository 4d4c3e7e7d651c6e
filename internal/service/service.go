package service

import (
	"context"
	"time"

	"kebutuhan-pln/internal/model"
)

// OrderService runs the requisition workflow: submission, status changes,
// approvals and the delivery note. Every call carries the acting principal.
type OrderService interface {
	// SubmitOrder validates the request, reserves stock and stores a new order.
	SubmitOrder(ctx context.Context, actor model.Principal, req *model.OrderRequest) (*model.Order, error)

	// MyOrders lists the actor's own orders, newest first.
	MyOrders(ctx context.Context, actor model.Principal) ([]model.OrderDetails, error)

	// AllOrders lists every order, optionally restricted to one status token.
	AllOrders(ctx context.Context, actor model.Principal, status string) ([]model.OrderDetails, error)

	// GetOrder returns one order with requester and delivery address.
	GetOrder(ctx context.Context, actor model.Principal, orderID string) (*model.OrderDetails, error)

	// SetStatus moves an order along the workflow.
	SetStatus(ctx context.Context, actor model.Principal, orderID, newStatus string) (*model.Order, error)

	// DeleteOrder removes an order permanently and returns it.
	DeleteOrder(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error)

	// ApplyApprovals records approved quantities per product.
	ApplyApprovals(ctx context.Context, actor model.Principal, orderID string, updates []model.ApprovalUpdate) (*model.Order, error)

	// EnsureNoteNumber assigns the delivery note number once.
	EnsureNoteNumber(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error)

	// UpdateNote edits the delivery note header and line notes.
	UpdateNote(ctx context.Context, actor model.Principal, orderID string, update model.DeliveryNoteUpdate) (*model.DeliveryNote, error)

	// RenderNote numbers the note if needed and returns its printable view.
	RenderNote(ctx context.Context, actor model.Principal, orderID string) (*model.DeliveryNoteView, error)

	// AttachNoteFile stores a signed or scanned note and links it to the order.
	AttachNoteFile(ctx context.Context, actor model.Principal, orderID string, file NoteFile) (*model.DeliveryNote, error)
}

// ReportService provides order analytics.
type ReportService interface {
	// Stats aggregates the orders of a calendar year. Zero means the current year.
	Stats(ctx context.Context, actor model.Principal, year int) (*model.OrderStats, error)
}

// NoteFile is an uploaded delivery note document.
type NoteFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// OrderServiceConfig holds workflow settings.
type OrderServiceConfig struct {
	NoteUnitCode          string
	NotePlace             string
	AllowShippedApprovals bool
	Location              *time.Location
}
