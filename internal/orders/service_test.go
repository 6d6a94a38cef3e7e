package orders

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/VadoVates/autoservice/pkg/db"
	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/enums"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
)

type serviceFixture struct {
	client   *db.Client
	svc      *service
	customer *models.Customer
	vehicle  *models.Vehicle
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	conn := setupOrdersTestDB(t)
	client := db.NewFromConn(conn)
	repo := NewRepository(conn)

	svc := &service{
		repo: repo,
		tx:   client,
		now:  func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
	}

	customer := &models.Customer{Name: "Anna Nowak"}
	require.NoError(t, conn.Create(customer).Error)
	vehicle := &models.Vehicle{
		CustomerID:         customer.ID,
		Brand:              "Skoda",
		Model:              "Octavia",
		RegistrationNumber: "WA11111",
	}
	require.NoError(t, conn.Create(vehicle).Error)

	return &serviceFixture{
		client:   client,
		svc:      svc,
		customer: customer,
		vehicle:  vehicle,
	}
}

func (f *serviceFixture) newOrder(t *testing.T, estimated string) *models.Order {
	t.Helper()

	order, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:    f.customer.ID,
		VehicleID:     f.vehicle.ID,
		Description:   "engine diagnostics",
		EstimatedCost: decimal.RequireFromString(estimated),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusNew, order.Status)
	return order
}

func (f *serviceFixture) newPart(t *testing.T, code, price string, stock int) *models.Part {
	t.Helper()

	part := &models.Part{
		Code:          code,
		Name:          "part " + code,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, f.client.DB().Create(part).Error)
	return part
}

func (f *serviceFixture) partStock(t *testing.T, partID uint) int {
	t.Helper()

	var part models.Part
	require.NoError(t, f.client.DB().First(&part, partID).Error)
	return part.StockQuantity
}

func TestUpdateStampsStartedAtOnce(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "100.00")

	inProgress := enums.OrderStatusInProgress
	updated, err := f.svc.Update(context.Background(), order.ID, Patch{Status: &inProgress})
	require.NoError(t, err)
	require.NotNil(t, updated.StartedAt)
	first := *updated.StartedAt

	// writing in_progress again must not move the timestamp
	f.svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	updated, err = f.svc.Update(context.Background(), order.ID, Patch{Status: &inProgress})
	require.NoError(t, err)
	require.NotNil(t, updated.StartedAt)
	require.True(t, updated.StartedAt.Equal(first))
}

func TestUpdateStampsCompletedAtOnce(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "100.00")

	completed := enums.OrderStatusCompleted
	updated, err := f.svc.Update(context.Background(), order.ID, Patch{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	first := *updated.CompletedAt

	inProgress := enums.OrderStatusInProgress
	_, err = f.svc.Update(context.Background(), order.ID, Patch{Status: &inProgress})
	require.NoError(t, err)

	updated, err = f.svc.Update(context.Background(), order.ID, Patch{Status: &completed})
	require.NoError(t, err)
	require.True(t, updated.CompletedAt.Equal(first))
}

func TestUpdateRejectsInvoicingNonCompletedOrder(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "100.00")

	invoiced := enums.OrderStatusInvoiced
	_, err := f.svc.Update(context.Background(), order.ID, Patch{Status: &invoiced})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	reloaded, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusNew, reloaded.Status)
	require.Nil(t, reloaded.FinalCost)
}

func TestUpdateInvoicedOrderIsTerminal(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "100.00")

	completed := enums.OrderStatusCompleted
	_, err := f.svc.Update(context.Background(), order.ID, Patch{Status: &completed})
	require.NoError(t, err)

	invoiced := enums.OrderStatusInvoiced
	updated, err := f.svc.Update(context.Background(), order.ID, Patch{Status: &invoiced})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusInvoiced, updated.Status)
	require.NotNil(t, updated.FinalCost)
	require.True(t, updated.FinalCost.Equal(decimal.RequireFromString("100.00")))

	fresh := enums.OrderStatusNew
	_, err = f.svc.Update(context.Background(), order.ID, Patch{Status: &fresh})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAttachPartDecrementsStock(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "0.00")
	part := f.newPart(t, "FLT-01", "10.00", 5)

	attached, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, 5, attached.Quantity)
	require.True(t, attached.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	require.Equal(t, 0, f.partStock(t, part.ID))

	_, err = f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Equal(t, 0, f.partStock(t, part.ID))

	// rejected attach must not leave an order part behind
	parts, err := f.svc.ListParts(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
}

func TestAttachDetachRoundTripRestoresStock(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "0.00")
	part := f.newPart(t, "SPK-01", "7.50", 8)

	attached, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 5, f.partStock(t, part.ID))

	require.NoError(t, f.svc.DetachPart(context.Background(), order.ID, attached.ID))
	require.Equal(t, 8, f.partStock(t, part.ID))

	reattached, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 5, f.partStock(t, part.ID))
	require.True(t, reattached.UnitPrice.Equal(attached.UnitPrice))
}

func TestAttachPartSnapshotsPriceAgainstLaterChanges(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "0.00")
	part := f.newPart(t, "BLT-01", "12.00", 4)

	attached, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.client.DB().Model(&models.Part{}).Where("id = ?", part.ID).
		Update("price", decimal.RequireFromString("99.00")).Error)

	parts, err := f.svc.ListParts(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.True(t, parts[0].UnitPrice.Equal(attached.UnitPrice))
	require.True(t, parts[0].UnitPrice.Equal(decimal.RequireFromString("12.00")))
}

func TestCompetingAttachesNeverOversell(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "0.00")
	part := f.newPart(t, "TRB-01", "50.00", 5)

	// two callers race for the same stock; the conditional decrement lets
	// exactly one through no matter the interleaving
	firstErr := func() error {
		_, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 3})
		return err
	}()
	secondErr := func() error {
		_, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 4})
		return err
	}()

	require.NoError(t, firstErr)
	require.Error(t, secondErr)
	typed := pkgerrors.As(secondErr)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Equal(t, 2, f.partStock(t, part.ID))
}

func TestGenerateInvoiceWithoutParts(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "250.00")

	completed := enums.OrderStatusCompleted
	_, err := f.svc.Update(context.Background(), order.ID, Patch{Status: &completed})
	require.NoError(t, err)

	data, err := f.svc.GenerateInvoice(context.Background(), order.ID, InvoiceInput{
		LaborCost: decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)
	require.True(t, data.Invoice.TotalAmount.Equal(decimal.RequireFromString("250.00")))
	require.Equal(t, enums.OrderStatusInvoiced, data.Order.Status)
	require.Equal(t, "INV-2026-"+strconv.FormatUint(uint64(order.ID), 10), data.Invoice.InvoiceNumber)

	reloaded, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusInvoiced, reloaded.Status)
	require.NotNil(t, reloaded.FinalCost)
	require.True(t, reloaded.FinalCost.Equal(decimal.RequireFromString("250.00")))
}

func TestGenerateInvoiceSumsPartsAndLabor(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "0.00")

	partA := f.newPart(t, "PA-01", "10.00", 10)
	partB := f.newPart(t, "PB-01", "5.00", 10)

	_, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: partA.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: partB.ID, Quantity: 1})
	require.NoError(t, err)

	completed := enums.OrderStatusCompleted
	_, err = f.svc.Update(context.Background(), order.ID, Patch{Status: &completed})
	require.NoError(t, err)

	data, err := f.svc.GenerateInvoice(context.Background(), order.ID, InvoiceInput{
		LaborCost: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	require.True(t, data.Invoice.TotalAmount.Equal(decimal.RequireFromString("125.00")))
}

func TestGenerateInvoiceRejectsNewOrder(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "80.00")

	_, err := f.svc.GenerateInvoice(context.Background(), order.ID, InvoiceInput{
		LaborCost: decimal.RequireFromString("10.00"),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	reloaded, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusNew, reloaded.Status)
	require.Nil(t, reloaded.FinalCost)

	_, err = f.svc.GetInvoice(context.Background(), order.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	f := newServiceFixture(t)
	order := f.newOrder(t, "0.00")
	part := f.newPart(t, "GSK-01", "3.00", 6)

	_, err := f.svc.AttachPart(context.Background(), order.ID, AttachPartInput{PartID: part.ID, Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, 2, f.partStock(t, part.ID))

	require.NoError(t, f.svc.Delete(context.Background(), order.ID))
	require.Equal(t, 6, f.partStock(t, part.ID))

	_, err = f.svc.Get(context.Background(), order.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateOrderValidatesReferences(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:    9999,
		VehicleID:     f.vehicle.ID,
		Description:   "ghost customer",
		EstimatedCost: decimal.Zero,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	otherCustomer := &models.Customer{Name: "Piotr Zielinski"}
	require.NoError(t, f.client.DB().Create(otherCustomer).Error)

	_, err = f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:    otherCustomer.ID,
		VehicleID:     f.vehicle.ID,
		Description:   "vehicle belongs to someone else",
		EstimatedCost: decimal.Zero,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
