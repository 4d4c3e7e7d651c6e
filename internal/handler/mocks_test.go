package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kebutuhan-pln/internal/middleware"
	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) SubmitOrder(ctx context.Context, actor model.Principal, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, actor, req)
	if o, ok := args.Get(0).(*model.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) MyOrders(ctx context.Context, actor model.Principal) ([]model.OrderDetails, error) {
	args := m.Called(ctx, actor)
	if o, ok := args.Get(0).([]model.OrderDetails); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) AllOrders(ctx context.Context, actor model.Principal, status string) ([]model.OrderDetails, error) {
	args := m.Called(ctx, actor, status)
	if o, ok := args.Get(0).([]model.OrderDetails); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, actor model.Principal, orderID string) (*model.OrderDetails, error) {
	args := m.Called(ctx, actor, orderID)
	if o, ok := args.Get(0).(*model.OrderDetails); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, actor model.Principal, orderID, newStatus string) (*model.Order, error) {
	args := m.Called(ctx, actor, orderID, newStatus)
	if o, ok := args.Get(0).(*model.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error) {
	args := m.Called(ctx, actor, orderID)
	if o, ok := args.Get(0).(*model.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ApplyApprovals(ctx context.Context, actor model.Principal, orderID string, updates []model.ApprovalUpdate) (*model.Order, error) {
	args := m.Called(ctx, actor, orderID, updates)
	if o, ok := args.Get(0).(*model.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) EnsureNoteNumber(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error) {
	args := m.Called(ctx, actor, orderID)
	if o, ok := args.Get(0).(*model.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) UpdateNote(ctx context.Context, actor model.Principal, orderID string, update model.DeliveryNoteUpdate) (*model.DeliveryNote, error) {
	args := m.Called(ctx, actor, orderID, update)
	if n, ok := args.Get(0).(*model.DeliveryNote); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) RenderNote(ctx context.Context, actor model.Principal, orderID string) (*model.DeliveryNoteView, error) {
	args := m.Called(ctx, actor, orderID)
	if v, ok := args.Get(0).(*model.DeliveryNoteView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) AttachNoteFile(ctx context.Context, actor model.Principal, orderID string, file service.NoteFile) (*model.DeliveryNote, error) {
	args := m.Called(ctx, actor, orderID, file)
	if n, ok := args.Get(0).(*model.DeliveryNote); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockReportService is a mock implementation of ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Stats(ctx context.Context, actor model.Principal, year int) (*model.OrderStats, error) {
	args := m.Called(ctx, actor, year)
	if s, ok := args.Get(0).(*model.OrderStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRenderer is a mock implementation of NoteRenderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) DeliveryNote(w io.Writer, view *model.DeliveryNoteView) error {
	args := m.Called(w, view)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, args.String(1))
	}
	return args.Error(0)
}

// serve runs h as actor, with chi URL parameters resolved against pattern.
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, actor *model.Principal, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if actor != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *actor))
	}
	r := newTestRouter(method, pattern, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newTestRouter(method, pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	return r
}
