package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// OrderIDPrefix starts every human-facing order number.
const OrderIDPrefix = "ORD-"

// Order is a requisition raised by one user. Items and the delivery note are
// part of the aggregate and are always read and written together.
type Order struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	OrderID           string       `json:"orderId" db:"order_id"`
	RequesterID       string       `json:"requesterId" db:"requester_id"`
	DeliveryAddressID string       `json:"deliveryAddressId" db:"delivery_address_id"`
	Items             []OrderLine  `json:"items" db:"items"`
	Status            Status       `json:"status" db:"status"`
	DeliveryNote      DeliveryNote `json:"suratJalan" db:"delivery_note"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// OrderLine is one product requested in an order.
type OrderLine struct {
	ProductID        string         `json:"productId"`
	Quantity         int            `json:"quantity"`
	ApprovedQuantity int            `json:"approvedQuantity"`
	ProductDetails   ProductDetails `json:"product_details"`
	Notes            string         `json:"notes"`
}

// ProductDetails is the product snapshot taken when the order was submitted.
type ProductDetails struct {
	Name     string   `json:"name"`
	Image    []string `json:"image"`
	Category string   `json:"category"`
}

// OrderRequest represents the request payload for submitting an order.
// ListItems is the field name used by the web client and is merged into Items.
type OrderRequest struct {
	Items       []OrderItemRequest `json:"items"`
	ListItems   []OrderItemRequest `json:"list_items,omitempty"`
	AddressID   string             `json:"addressId"`
	RequestedBy *string            `json:"requestedBy,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Lines returns every requested item regardless of which field carried it.
func (r *OrderRequest) Lines() []OrderItemRequest {
	return append(append([]OrderItemRequest{}, r.Items...), r.ListItems...)
}

// MergeLines folds repeated product IDs into one line, keeping first-seen order.
func MergeLines(lines []OrderItemRequest) []OrderItemRequest {
	totals := make(map[string]int, len(lines))
	for _, l := range lines {
		totals[l.ProductID] += l.Quantity
	}
	ids := lo.Uniq(lo.Map(lines, func(l OrderItemRequest, _ int) string { return l.ProductID }))
	return lo.Map(ids, func(id string, _ int) OrderItemRequest {
		return OrderItemRequest{ProductID: id, Quantity: totals[id]}
	})
}

// ApprovalUpdate sets the approved quantity of one line.
type ApprovalUpdate struct {
	ProductID        string `json:"productId"`
	ApprovedQuantity int    `json:"approvedQuantity"`
}

// OrderFilter narrows order listings. Zero values mean no restriction.
type OrderFilter struct {
	RequesterID string
	Status      Status
}

// OrderDetails is an order with its requester and delivery address resolved.
type OrderDetails struct {
	Order
	Requester       *UserSummary `json:"requester,omitempty"`
	DeliveryAddress *Address     `json:"deliveryAddress,omitempty"`
}

// TransitionTo moves the order to target. It reports whether the status changed;
// asking for the current status of an open order is accepted as a no-op.
func (o *Order) TransitionTo(target Status) (bool, error) {
	if o.Status.IsTerminal() {
		return false, NewInvalidTransitionError(o.Status, target)
	}
	if o.Status == target {
		return false, nil
	}
	if !o.Status.CanTransitionTo(target) {
		return false, NewInvalidTransitionError(o.Status, target)
	}
	o.Status = target
	return true, nil
}

// ApplyApprovals clamps every matching update into [0, quantity] and stores it.
// Updates for products not on the order are ignored. When anything changed the
// order moves to Diproses, except a shipped order which keeps its status.
func (o *Order) ApplyApprovals(updates []ApprovalUpdate, allowShipped bool) (bool, error) {
	if o.Status.IsTerminal() || (o.Status == StatusShipped && !allowShipped) {
		return false, ErrOrderTerminal
	}

	before := lo.Map(o.Items, func(l OrderLine, _ int) int { return l.ApprovedQuantity })
	for _, u := range updates {
		for i := range o.Items {
			line := &o.Items[i]
			if line.ProductID == u.ProductID {
				line.ApprovedQuantity = lo.Clamp(u.ApprovedQuantity, 0, line.Quantity)
			}
		}
	}

	// Only the final values count; repeated updates may cancel out.
	changed := false
	for i, l := range o.Items {
		if l.ApprovedQuantity != before[i] {
			changed = true
		}
	}

	if changed && o.Status != StatusShipped {
		o.Status = StatusInProcess
	}
	return changed, nil
}

// ApprovedLines returns the lines with a positive approved quantity.
func (o *Order) ApprovedLines() []OrderLine {
	return lo.Filter(o.Items, func(l OrderLine, _ int) bool {
		return l.ApprovedQuantity > 0
	})
}

// HasApprovedItems reports whether at least one line was approved.
func (o *Order) HasApprovedItems() bool {
	return lo.SomeBy(o.Items, func(l OrderLine) bool { return l.ApprovedQuantity > 0 })
}

// ApplyLineNotes sets per-line notes, ignoring unknown product IDs.
func (o *Order) ApplyLineNotes(notes []LineNote, clean func(string) string) {
	for _, n := range notes {
		for i := range o.Items {
			if o.Items[i].ProductID == n.ProductID {
				o.Items[i].Notes = clean(n.Notes)
			}
		}
	}
}
