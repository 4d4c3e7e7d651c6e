package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"kebutuhan-pln/internal/attachment"
	"kebutuhan-pln/internal/model"

	"github.com/jackc/pgx/v5"
)

// EnsureNoteNumber assigns the next number of the order's month. The counter
// increment and the order update share one transaction, so a failed call
// leaves no gap in the sequence.
func (s *orderService) EnsureNoteNumber(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	order, err := s.mutateOrder(ctx, orderID, func(tx pgx.Tx, o *model.Order) (bool, error) {
		if o.DeliveryNote.Number != "" {
			return false, nil
		}
		if !o.HasApprovedItems() {
			return false, model.ErrNoApprovedItems
		}

		created := o.CreatedAt.In(s.cfg.Location)
		seq, err := s.counterRepo.Next(ctx, tx, model.NoteBucket(created))
		if err != nil {
			return false, err
		}

		o.DeliveryNote.Number = model.FormatNoteNumber(seq, s.cfg.NoteUnitCode, created)

		s.logger.Info().
			Str("order_id", o.OrderID).
			Str("number", o.DeliveryNote.Number).
			Msg("delivery note numbered")

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateNote edits the note of an order in any status.
func (s *orderService) UpdateNote(ctx context.Context, actor model.Principal, orderID string, update model.DeliveryNoteUpdate) (*model.DeliveryNote, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	order, err := s.mutateOrder(ctx, orderID, func(_ pgx.Tx, o *model.Order) (bool, error) {
		if err := o.DeliveryNote.Apply(update, s.clean); err != nil {
			return false, err
		}
		o.ApplyLineNotes(update.Items, s.clean)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", orderID).Msg("delivery note updated")

	return &order.DeliveryNote, nil
}

// RenderNote returns the printable view, numbering the note first if needed.
func (s *orderService) RenderNote(ctx context.Context, actor model.Principal, orderID string) (*model.DeliveryNoteView, error) {
	order, err := s.EnsureNoteNumber(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	return model.NewDeliveryNoteView(order, s.cfg.NotePlace, s.cfg.Location), nil
}

// AttachNoteFile stores the file and records its location on the note.
func (s *orderService) AttachNoteFile(ctx context.Context, actor model.Principal, orderID string, file NoteFile) (*model.DeliveryNote, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}
	if len(file.Body) == 0 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Attachment body is empty")
	}

	existing, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if existing == nil {
		return nil, model.NewOrderNotFoundError(orderID)
	}

	ref, err := s.attachments.Put(ctx, attachment.Object{
		Key:         attachment.NoteKey(orderID, file.Filename),
		ContentType: file.ContentType,
		Body:        file.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	order, err := s.mutateOrder(ctx, orderID, func(_ pgx.Tx, o *model.Order) (bool, error) {
		o.DeliveryNote.URL = ref
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", orderID).Str("url", ref).Msg("delivery note attachment stored")

	return &order.DeliveryNote, nil
}

// maxCleanPasses bounds how many layers of entity encoding clean unwraps.
const maxCleanPasses = 4

// clean strips markup from free text printed on the note and returns plain
// text. Entity-encoded markup is decoded and stripped again until the text
// stops changing; whatever is left after maxCleanPasses stays escaped.
func (s *orderService) clean(text string) string {
	for range maxCleanPasses {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			return strings.TrimSpace(next)
		}
		text = next
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}
