package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultNoteUnitCode is the issuing unit segment of a delivery note number.
const DefaultNoteUnitCode = "MUM/UPTBGOR"

// DeliveryNote holds the "Surat Jalan" header of an order.
type DeliveryNote struct {
	Number             string     `json:"number"`
	Purpose            string     `json:"purpose"`
	Destination        string     `json:"destination"`
	AccordingToRequest string     `json:"accordingToRequest"`
	Vehicle            string     `json:"vehicle"`
	Driver             string     `json:"driver"`
	Receiver           string     `json:"receiver"`
	Approver           string     `json:"approver"`
	Date               *time.Time `json:"date,omitempty"`
	URL                string     `json:"url,omitempty"`
}

// DeliveryNoteUpdate is a partial update of the note. Nil fields are left as
// they are. RequestedBy is the client's name for Destination. The number is
// never taken from clients.
type DeliveryNoteUpdate struct {
	Purpose            *string    `json:"purpose,omitempty"`
	Destination        *string    `json:"destination,omitempty"`
	RequestedBy        *string    `json:"requestedBy,omitempty"`
	AccordingToRequest *string    `json:"accordingToRequest,omitempty"`
	Vehicle            *string    `json:"vehicle,omitempty"`
	Driver             *string    `json:"driver,omitempty"`
	Receiver           *string    `json:"receiver,omitempty"`
	Approver           *string    `json:"approver,omitempty"`
	Date               *string    `json:"date,omitempty"`
	Items              []LineNote `json:"items,omitempty"`
}

// LineNote attaches a remark to the order line of a product.
type LineNote struct {
	ProductID string `json:"productId"`
	Notes     string `json:"notes"`
}

// Apply copies the set fields of u into the note after passing free text
// through clean.
func (n *DeliveryNote) Apply(u DeliveryNoteUpdate, clean func(string) string) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = clean(*src)
		}
	}
	set(&n.Purpose, u.Purpose)
	set(&n.Destination, u.RequestedBy)
	set(&n.Destination, u.Destination)
	set(&n.AccordingToRequest, u.AccordingToRequest)
	set(&n.Vehicle, u.Vehicle)
	set(&n.Driver, u.Driver)
	set(&n.Receiver, u.Receiver)
	set(&n.Approver, u.Approver)

	if u.Date != nil {
		if strings.TrimSpace(*u.Date) == "" {
			n.Date = nil
			return nil
		}
		d, err := ParseNoteDate(*u.Date)
		if err != nil {
			return err
		}
		n.Date = &d
	}
	return nil
}

// ParseNoteDate accepts a calendar date or an RFC 3339 timestamp.
func ParseNoteDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewInvalidDateError(s)
}

// NoteBucket is the counter scope of a note number: one sequence per month.
func NoteBucket(t time.Time) string {
	return t.Format("2006-01")
}

// FormatNoteNumber renders a sequence value as NNN/<unit>/MM/YYYY.
func FormatNoteNumber(seq int, unitCode string, t time.Time) string {
	return fmt.Sprintf("%03d/%s/%02d/%04d", seq, unitCode, int(t.Month()), t.Year())
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatIndonesianDate renders t as "02 Mei 2025".
func FormatIndonesianDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// DeliveryNoteView is the printable projection of a note. Rows only contain
// lines with an approved quantity.
type DeliveryNoteView struct {
	OrderID            string            `json:"orderId"`
	Number             string            `json:"number"`
	Purpose            string            `json:"purpose"`
	Destination        string            `json:"destination"`
	AccordingToRequest string            `json:"accordingToRequest"`
	Vehicle            string            `json:"vehicle"`
	Driver             string            `json:"driver"`
	Receiver           string            `json:"receiver"`
	Approver           string            `json:"approver"`
	URL                string            `json:"url,omitempty"`
	Date               time.Time         `json:"date"`
	DateLine           string            `json:"dateLine"`
	Rows               []DeliveryNoteRow `json:"rows"`
}

// DeliveryNoteRow is one printed table row.
type DeliveryNoteRow struct {
	No               int    `json:"no"`
	ProductName      string `json:"productName"`
	Category         string `json:"category"`
	ApprovedQuantity int    `json:"approvedQuantity"`
	Notes            string `json:"notes"`
}

// NewDeliveryNoteView builds the printable view of o. The document date is the
// note date when set and the order date otherwise.
func NewDeliveryNoteView(o *Order, place string, loc *time.Location) *DeliveryNoteView {
	date := o.CreatedAt
	if o.DeliveryNote.Date != nil {
		date = *o.DeliveryNote.Date
	}
	date = date.In(loc)

	approved := o.ApprovedLines()
	rows := make([]DeliveryNoteRow, 0, len(approved))
	for i, l := range approved {
		rows = append(rows, DeliveryNoteRow{
			No:               i + 1,
			ProductName:      l.ProductDetails.Name,
			Category:         l.ProductDetails.Category,
			ApprovedQuantity: l.ApprovedQuantity,
			Notes:            l.Notes,
		})
	}

	n := o.DeliveryNote
	return &DeliveryNoteView{
		OrderID:            o.OrderID,
		Number:             n.Number,
		Purpose:            n.Purpose,
		Destination:        n.Destination,
		AccordingToRequest: n.AccordingToRequest,
		Vehicle:            n.Vehicle,
		Driver:             n.Driver,
		Receiver:           n.Receiver,
		Approver:           n.Approver,
		URL:                n.URL,
		Date:               date,
		DateLine:           fmt.Sprintf("%s, %s", place, FormatIndonesianDate(date)),
		Rows:               rows,
	}
}
