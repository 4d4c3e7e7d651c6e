package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kebutuhan-pln/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2025, time.May, 2, 9, 30, 0, 0, time.UTC)
	admin    = model.Principal{UserID: "admin-1", Role: model.RoleAdmin}
	employee = model.Principal{UserID: "user-1", Role: model.RoleUser}
)

type fixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	addresses *MockAddressRepository
	carts     *MockCartRepository
	counters  *MockCounterRepository
	store     *MockStore
	tx        *MockTx
	svc       *orderService
}

func newFixture(t *testing.T, cfg OrderServiceConfig) *fixture {
	f := &fixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		addresses: new(MockAddressRepository),
		carts:     new(MockCartRepository),
		counters:  new(MockCounterRepository),
		store:     new(MockStore),
		tx:        new(MockTx),
	}
	f.svc = newOrderService(f.orders, f.products, f.addresses, f.carts, f.counters, f.store, cfg, zerolog.Nop())
	f.svc.now = func() time.Time { return fixedNow }
	f.svc.newOrderID = func() string { return "ORD-01TEST" }

	t.Cleanup(func() {
		f.orders.AssertExpectations(t)
		f.products.AssertExpectations(t)
		f.addresses.AssertExpectations(t)
		f.carts.AssertExpectations(t)
		f.counters.AssertExpectations(t)
		f.store.AssertExpectations(t)
		f.tx.AssertExpectations(t)
	})
	return f
}

func defaultConfig() OrderServiceConfig {
	return OrderServiceConfig{
		NoteUnitCode:          "MUM/UPTBGOR",
		NotePlace:             "Bogor",
		AllowShippedApprovals: true,
		Location:              time.UTC,
	}
}

// expectLocked prepares a transaction that locks and returns order.
func (f *fixture) expectLocked(orderID string, order *model.Order) {
	f.orders.On("BeginTx", mock.Anything).Return(f.tx, nil).Once()
	f.orders.On("GetForUpdate", mock.Anything, f.tx, orderID).Return(order, nil).Once()
}

func (f *fixture) expectCommit() {
	f.tx.On("Commit", mock.Anything).Return(nil).Once()
}

func (f *fixture) expectRollback() {
	f.tx.On("Rollback", mock.Anything).Return(nil).Once()
}

func storedOrder(status model.Status, lines ...model.OrderLine) *model.Order {
	return &model.Order{
		ID:                uuid.New(),
		OrderID:           "ORD-1",
		RequesterID:       employee.UserID,
		DeliveryAddressID: "addr-1",
		Items:             lines,
		Status:            status,
		CreatedAt:         fixedNow.Add(-24 * time.Hour),
		UpdatedAt:         fixedNow.Add(-24 * time.Hour),
	}
}

func catalog() []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Kabel NYY 4x16", Image: []string{"kabel.png"}, Category: "Material", Stock: 10},
		{ID: "P002", Name: "Helm Safety", Category: "K3", Stock: 1},
	}
}

func TestOrderService_SubmitOrder_Success(t *testing.T) {
	f := newFixture(t, defaultConfig())
	requestedBy := "ULP <b>Bogor</b> Kota"

	req := &model.OrderRequest{
		AddressID:   "addr-1",
		Items:       []model.OrderItemRequest{{ProductID: "P001", Quantity: 2}, {ProductID: "P002", Quantity: 1}},
		ListItems:   []model.OrderItemRequest{{ProductID: "P001", Quantity: 3}},
		RequestedBy: &requestedBy,
	}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P001", "P002"}).Return(catalog(), nil)
	f.orders.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P001", 5).Return(true, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P002", 1).Return(true, nil)
	f.orders.On("CreateOrder", mock.Anything, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.expectCommit()
	f.carts.On("Clear", mock.Anything, employee.UserID).Return(nil)

	order, err := f.svc.SubmitOrder(context.Background(), employee, req)

	require.NoError(t, err)
	assert.Equal(t, "ORD-01TEST", order.OrderID)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, model.StatusSubmitted, order.Status)
	assert.Equal(t, employee.UserID, order.RequesterID)
	assert.Equal(t, "addr-1", order.DeliveryAddressID)
	assert.Equal(t, fixedNow, order.CreatedAt)
	assert.Equal(t, "ULP Bogor Kota", order.DeliveryNote.Destination)
	assert.Empty(t, order.DeliveryNote.Number)

	require.Len(t, order.Items, 2)
	assert.Equal(t, model.OrderLine{
		ProductID:      "P001",
		Quantity:       5,
		ProductDetails: model.ProductDetails{Name: "Kabel NYY 4x16", Image: []string{"kabel.png"}, Category: "Material"},
	}, order.Items[0])
	assert.Equal(t, 0, order.Items[1].ApprovedQuantity)
}

func TestOrderService_SubmitOrder_LocksStockInProductOrder(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{
		AddressID: "addr-1",
		Items:     []model.OrderItemRequest{{ProductID: "P002", Quantity: 1}, {ProductID: "P001", Quantity: 2}},
	}

	var locked []string
	record := func(args mock.Arguments) { locked = append(locked, args.String(2)) }

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P002", "P001"}).Return(catalog(), nil)
	f.orders.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P002", 1).Run(record).Return(true, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P001", 2).Run(record).Return(true, nil)
	f.orders.On("CreateOrder", mock.Anything, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.expectCommit()
	f.carts.On("Clear", mock.Anything, employee.UserID).Return(nil)

	order, err := f.svc.SubmitOrder(context.Background(), employee, req)

	require.NoError(t, err)
	assert.Equal(t, []string{"P001", "P002"}, locked)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "P002", order.Items[0].ProductID)
	assert.Equal(t, "P001", order.Items[1].ProductID)
}
func TestOrderService_SubmitOrder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.OrderRequest
		wantErr error
	}{
		{name: "nil request", req: nil, wantErr: model.ErrEmptyCart},
		{name: "no lines", req: &model.OrderRequest{AddressID: "addr-1"}, wantErr: model.ErrEmptyCart},
		{
			name:    "missing product id",
			req:     &model.OrderRequest{AddressID: "addr-1", Items: []model.OrderItemRequest{{Quantity: 1}}},
			wantErr: model.ErrInvalidLineItem,
		},
		{
			name:    "zero quantity",
			req:     &model.OrderRequest{AddressID: "addr-1", Items: []model.OrderItemRequest{{ProductID: "P001", Quantity: 0}}},
			wantErr: model.ErrInvalidLineItem,
		},
		{
			name:    "negative quantity",
			req:     &model.OrderRequest{AddressID: "addr-1", ListItems: []model.OrderItemRequest{{ProductID: "P001", Quantity: -2}}},
			wantErr: model.ErrInvalidLineItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultConfig())

			_, err := f.svc.SubmitOrder(context.Background(), employee, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderService_SubmitOrder_InvalidAddress(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{AddressID: "addr-9", Items: []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}}}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-9", employee.UserID).Return(false, nil)

	_, err := f.svc.SubmitOrder(context.Background(), employee, req)

	assert.ErrorIs(t, err, model.ErrInvalidAddress)
	f.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestOrderService_SubmitOrder_ProductNotFound(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{AddressID: "addr-1", Items: []model.OrderItemRequest{{ProductID: "P404", Quantity: 1}}}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P404"}).Return([]model.Product{}, nil)

	_, err := f.svc.SubmitOrder(context.Background(), employee, req)

	var de *model.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, model.ErrCodeProductNotFound, de.Code)
	assert.Equal(t, "P404", de.Details["productId"])
	f.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_SubmitOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{AddressID: "addr-1", Items: []model.OrderItemRequest{{ProductID: "P002", Quantity: 2}}}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P002"}).Return(catalog(), nil)

	_, err := f.svc.SubmitOrder(context.Background(), employee, req)

	var de *model.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, model.ErrCodeInsufficientStock, de.Code)
	assert.Equal(t, "Helm Safety", de.Details["productName"])
	assert.Equal(t, 1, de.Details["available"])
	assert.Contains(t, de.Message, "Available: 1")
	f.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_SubmitOrder_LostStockRace(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{
		AddressID: "addr-1",
		Items:     []model.OrderItemRequest{{ProductID: "P001", Quantity: 4}, {ProductID: "P002", Quantity: 1}},
	}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P001", "P002"}).Return(catalog(), nil)
	f.orders.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P001", 4).Return(true, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P002", 1).Return(false, nil)
	f.products.On("GetStock", mock.Anything, f.tx, "P002").Return(0, nil)
	f.expectRollback()

	_, err := f.svc.SubmitOrder(context.Background(), employee, req)

	var de *model.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, model.ErrCodeInsufficientStock, de.Code)
	assert.Equal(t, 0, de.Details["available"])
	f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	f.tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestOrderService_SubmitOrder_InsertFails(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{AddressID: "addr-1", Items: []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}}}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P001"}).Return(catalog(), nil)
	f.orders.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P001", 1).Return(true, nil)
	f.orders.On("CreateOrder", mock.Anything, f.tx, mock.Anything).Return(errors.New("connection reset"))
	f.expectRollback()

	_, err := f.svc.SubmitOrder(context.Background(), employee, req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestOrderService_SubmitOrder_CartClearFailureIsIgnored(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &model.OrderRequest{AddressID: "addr-1", Items: []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}}}

	f.addresses.On("IsActiveForUser", mock.Anything, "addr-1", employee.UserID).Return(true, nil)
	f.products.On("GetByIDs", mock.Anything, []string{"P001"}).Return(catalog(), nil)
	f.orders.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.products.On("DecrementStock", mock.Anything, f.tx, "P001", 1).Return(true, nil)
	f.orders.On("CreateOrder", mock.Anything, f.tx, mock.Anything).Return(nil)
	f.expectCommit()
	f.carts.On("Clear", mock.Anything, employee.UserID).Return(errors.New("cart service down"))

	order, err := f.svc.SubmitOrder(context.Background(), employee, req)

	require.NoError(t, err)
	assert.Equal(t, "ORD-01TEST", order.OrderID)
}

func TestOrderService_SetStatus(t *testing.T) {
	tests := []struct {
		name       string
		from       model.Status
		to         string
		wantStatus model.Status
		wantUpdate bool
		wantErr    error
	}{
		{name: "submitted to in process", from: model.StatusSubmitted, to: "Diproses", wantStatus: model.StatusInProcess, wantUpdate: true},
		{name: "shipped to completed", from: model.StatusShipped, to: "Selesai", wantStatus: model.StatusCompleted, wantUpdate: true},
		{name: "same status is a no-op", from: model.StatusInProcess, to: "Diproses", wantStatus: model.StatusInProcess},
		{name: "skipping a step", from: model.StatusSubmitted, to: "Selesai", wantErr: model.ErrInvalidTransition},
		{name: "terminal source", from: model.StatusCancelled, to: "Diproses", wantErr: model.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultConfig())
			f.expectLocked("ORD-1", storedOrder(tt.from, model.OrderLine{ProductID: "P001", Quantity: 1}))

			if tt.wantErr != nil {
				f.expectRollback()
			} else {
				f.expectCommit()
			}
			if tt.wantUpdate {
				f.orders.On("UpdateOrder", mock.Anything, f.tx, mock.MatchedBy(func(o *model.Order) bool {
					return o.Status == tt.wantStatus && o.UpdatedAt.Equal(fixedNow)
				})).Return(nil)
			}

			order, err := f.svc.SetStatus(context.Background(), admin, "ORD-1", tt.to)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.orders.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, order.Status)
			if !tt.wantUpdate {
				f.orders.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderService_SetStatus_Rejections(t *testing.T) {
	t.Run("not an admin", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		_, err := f.svc.SetStatus(context.Background(), employee, "ORD-1", "Diproses")
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("unknown status token", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		_, err := f.svc.SetStatus(context.Background(), admin, "ORD-1", "Approved")
		assert.ErrorIs(t, err, model.ErrUnknownStatus)
	})

	t.Run("order not found", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.expectLocked("ORD-404", nil)
		f.expectRollback()

		_, err := f.svc.SetStatus(context.Background(), admin, "ORD-404", "Diproses")

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_Queries(t *testing.T) {
	listed := []model.OrderDetails{{Order: *storedOrder(model.StatusSubmitted)}}

	t.Run("my orders are filtered by requester", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.orders.On("List", mock.Anything, model.OrderFilter{RequesterID: employee.UserID}).Return(listed, nil)

		orders, err := f.svc.MyOrders(context.Background(), employee)

		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("all orders with status filter", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.orders.On("List", mock.Anything, model.OrderFilter{Status: model.StatusShipped}).Return([]model.OrderDetails{}, nil)

		orders, err := f.svc.AllOrders(context.Background(), admin, "Dikirim")

		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("all orders rejects unknown status", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		_, err := f.svc.AllOrders(context.Background(), admin, "dikirim")
		assert.ErrorIs(t, err, model.ErrUnknownStatus)
	})

	t.Run("all orders needs admin", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		_, err := f.svc.AllOrders(context.Background(), employee, "")
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("get order hides foreign orders", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		details := &model.OrderDetails{Order: *storedOrder(model.StatusSubmitted)}
		f.orders.On("GetByOrderID", mock.Anything, "ORD-1").Return(details, nil)

		got, err := f.svc.GetOrder(context.Background(), admin, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", got.OrderID)

		got, err = f.svc.GetOrder(context.Background(), employee, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, employee.UserID, got.RequesterID)

		_, err = f.svc.GetOrder(context.Background(), model.Principal{UserID: "someone-else"}, "ORD-1")
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("get missing order", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.orders.On("GetByOrderID", mock.Anything, "ORD-404").Return(nil, nil)

		_, err := f.svc.GetOrder(context.Background(), admin, "ORD-404")

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	t.Run("deletes and returns the order", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.orders.On("DeleteByOrderID", mock.Anything, "ORD-1").Return(storedOrder(model.StatusCancelled), nil)

		order, err := f.svc.DeleteOrder(context.Background(), admin, "ORD-1")

		require.NoError(t, err)
		assert.Equal(t, "ORD-1", order.OrderID)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.orders.On("DeleteByOrderID", mock.Anything, "ORD-404").Return(nil, nil)

		_, err := f.svc.DeleteOrder(context.Background(), admin, "ORD-404")

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.orders.On("DeleteByOrderID", mock.Anything, "ORD-1").Return(nil, errors.New("boom"))

		_, err := f.svc.DeleteOrder(context.Background(), admin, "ORD-1")

		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("needs admin", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		_, err := f.svc.DeleteOrder(context.Background(), employee, "ORD-1")
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
