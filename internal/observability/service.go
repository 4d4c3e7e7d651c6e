package observability

import (
	"context"
	"errors"

	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/service"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "kebutuhan-pln/internal/observability"

// OrderService decorates a service.OrderService with spans and counters.
type OrderService struct {
	inner   service.OrderService
	tracer  trace.Tracer
	logger  zerolog.Logger
	metrics serviceMetrics
}

// ReportService decorates a service.ReportService with spans.
type ReportService struct {
	inner  service.ReportService
	tracer trace.Tracer
	logger zerolog.Logger
}

// WrapOrderService returns inner instrumented with ins.
func WrapOrderService(inner service.OrderService, ins *Instruments, logger zerolog.Logger) *OrderService {
	return &OrderService{
		inner:   inner,
		tracer:  ins.Tracer(instrumentationName),
		logger:  logger.With().Str("component", "telemetry").Logger(),
		metrics: newServiceMetrics(ins.Meter(instrumentationName)),
	}
}

// WrapReportService returns inner instrumented with ins.
func WrapReportService(inner service.ReportService, ins *Instruments, logger zerolog.Logger) *ReportService {
	return &ReportService{
		inner:  inner,
		tracer: ins.Tracer(instrumentationName),
		logger: logger.With().Str("component", "telemetry").Logger(),
	}
}

func (s *OrderService) start(ctx context.Context, name string, actor model.Principal, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("actor.id", actor.UserID),
		attribute.String("actor.role", string(actor.Role)),
	)
	return s.tracer.Start(ctx, "OrderService."+name, trace.WithAttributes(attrs...))
}

func (s *OrderService) SubmitOrder(ctx context.Context, actor model.Principal, req *model.OrderRequest) (*model.Order, error) {
	ctx, span := s.start(ctx, "SubmitOrder", actor)
	defer span.End()

	order, err := s.inner.SubmitOrder(ctx, actor, req)
	if err != nil {
		return nil, s.handleError(ctx, span, "SubmitOrder", err)
	}
	span.SetAttributes(attribute.String("order.id", order.OrderID), attribute.Int("order.lines", len(order.Items)))
	s.metrics.recordSubmitted(ctx, len(order.Items))
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, actor model.Principal) ([]model.OrderDetails, error) {
	ctx, span := s.start(ctx, "MyOrders", actor)
	defer span.End()

	orders, err := s.inner.MyOrders(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, "MyOrders", err)
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *OrderService) AllOrders(ctx context.Context, actor model.Principal, status string) ([]model.OrderDetails, error) {
	ctx, span := s.start(ctx, "AllOrders", actor, attribute.String("filter.status", status))
	defer span.End()

	orders, err := s.inner.AllOrders(ctx, actor, status)
	if err != nil {
		return nil, s.handleError(ctx, span, "AllOrders", err)
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor model.Principal, orderID string) (*model.OrderDetails, error) {
	ctx, span := s.start(ctx, "GetOrder", actor, attribute.String("order.id", orderID))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, "GetOrder", err)
	}
	return order, nil
}

func (s *OrderService) SetStatus(ctx context.Context, actor model.Principal, orderID, newStatus string) (*model.Order, error) {
	ctx, span := s.start(ctx, "SetStatus", actor,
		attribute.String("order.id", orderID),
		attribute.String("order.target_status", newStatus))
	defer span.End()

	order, err := s.inner.SetStatus(ctx, actor, orderID, newStatus)
	if err != nil {
		return nil, s.handleError(ctx, span, "SetStatus", err)
	}
	s.metrics.recordStatus(ctx, order.Status)
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error) {
	ctx, span := s.start(ctx, "DeleteOrder", actor, attribute.String("order.id", orderID))
	defer span.End()

	order, err := s.inner.DeleteOrder(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, "DeleteOrder", err)
	}
	return order, nil
}

func (s *OrderService) ApplyApprovals(ctx context.Context, actor model.Principal, orderID string, updates []model.ApprovalUpdate) (*model.Order, error) {
	ctx, span := s.start(ctx, "ApplyApprovals", actor,
		attribute.String("order.id", orderID),
		attribute.Int("approval.updates", len(updates)))
	defer span.End()

	order, err := s.inner.ApplyApprovals(ctx, actor, orderID, updates)
	if err != nil {
		return nil, s.handleError(ctx, span, "ApplyApprovals", err)
	}
	span.SetAttributes(attribute.String("order.status", string(order.Status)))
	return order, nil
}

func (s *OrderService) EnsureNoteNumber(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error) {
	ctx, span := s.start(ctx, "EnsureNoteNumber", actor, attribute.String("order.id", orderID))
	defer span.End()

	order, err := s.inner.EnsureNoteNumber(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, "EnsureNoteNumber", err)
	}
	span.SetAttributes(attribute.String("note.number", order.DeliveryNote.Number))
	return order, nil
}

func (s *OrderService) UpdateNote(ctx context.Context, actor model.Principal, orderID string, update model.DeliveryNoteUpdate) (*model.DeliveryNote, error) {
	ctx, span := s.start(ctx, "UpdateNote", actor, attribute.String("order.id", orderID))
	defer span.End()

	note, err := s.inner.UpdateNote(ctx, actor, orderID, update)
	if err != nil {
		return nil, s.handleError(ctx, span, "UpdateNote", err)
	}
	return note, nil
}

func (s *OrderService) RenderNote(ctx context.Context, actor model.Principal, orderID string) (*model.DeliveryNoteView, error) {
	ctx, span := s.start(ctx, "RenderNote", actor, attribute.String("order.id", orderID))
	defer span.End()

	view, err := s.inner.RenderNote(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, "RenderNote", err)
	}
	span.SetAttributes(attribute.Int("note.rows", len(view.Rows)))
	return view, nil
}

func (s *OrderService) AttachNoteFile(ctx context.Context, actor model.Principal, orderID string, file service.NoteFile) (*model.DeliveryNote, error) {
	ctx, span := s.start(ctx, "AttachNoteFile", actor,
		attribute.String("order.id", orderID),
		attribute.String("file.content_type", file.ContentType),
		attribute.Int("file.size", len(file.Body)))
	defer span.End()

	note, err := s.inner.AttachNoteFile(ctx, actor, orderID, file)
	if err != nil {
		return nil, s.handleError(ctx, span, "AttachNoteFile", err)
	}
	return note, nil
}

// handleError marks the span failed. Domain errors are expected outcomes and
// only set the error code; everything else is recorded and logged.
func (s *OrderService) handleError(ctx context.Context, span trace.Span, op string, err error) error {
	code := errorCode(err)
	span.SetAttributes(attribute.String("error.code", code))
	s.metrics.recordFailure(ctx, op, code)

	if code != model.ErrCodeInternalError {
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error().Err(err).Str("operation", op).Msg("order operation failed")
	return err
}

func (s *ReportService) Stats(ctx context.Context, actor model.Principal, year int) (*model.OrderStats, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.Stats", trace.WithAttributes(
		attribute.String("actor.id", actor.UserID),
		attribute.Int("report.year", year),
	))
	defer span.End()

	stats, err := s.inner.Stats(ctx, actor, year)
	if err != nil {
		if errorCode(err) == model.ErrCodeInternalError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error().Err(err).Msg("report failed")
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.total_orders", stats.TotalOrders))
	return stats, nil
}

func errorCode(err error) string {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return model.ErrCodeInternalError
}

type serviceMetrics struct {
	ordersSubmitted metric.Int64Counter
	linesSubmitted  metric.Int64Counter
	statusChanges   metric.Int64Counter
	failures        metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersSubmitted, _ := m.Int64Counter("orders.submitted", metric.WithDescription("Number of orders submitted"))
	linesSubmitted, _ := m.Int64Counter("orders.lines_submitted", metric.WithDescription("Number of order lines submitted"))
	statusChanges, _ := m.Int64Counter("orders.status_changes", metric.WithDescription("Number of status updates by resulting status"))
	failures, _ := m.Int64Counter("orders.failures", metric.WithDescription("Number of failed operations by error code"))
	return serviceMetrics{
		ordersSubmitted: ordersSubmitted,
		linesSubmitted:  linesSubmitted,
		statusChanges:   statusChanges,
		failures:        failures,
	}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context, lines int) {
	if m.ordersSubmitted != nil {
		m.ordersSubmitted.Add(ctx, 1)
	}
	if m.linesSubmitted != nil {
		m.linesSubmitted.Add(ctx, int64(lines))
	}
}

func (m serviceMetrics) recordStatus(ctx context.Context, status model.Status) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context, op, code string) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("error.code", code),
		))
	}
}

var (
	_ service.OrderService  = (*OrderService)(nil)
	_ service.ReportService = (*ReportService)(nil)
)
