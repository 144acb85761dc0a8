package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/gridledger/billing/internal/domain/notification"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCascade_DeletingClientRemovesEverythingItOwns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doomed := seedChain(t, db, "201")
	kept := seedChain(t, db, "202")
	tf := seedTariff(t, db, 3)

	for _, fx := range []fixture{doomed, kept} {
		a, err := tariff.NewAssignment(fx.contract.ID, tf.ID, time.Now())
		require.NoError(t, err)
		require.NoError(t, NewGormAssignmentRepository(db).Create(ctx, a))

		inv := seedInvoice(t, db, fx.reading.ID, "100.00")
		paid := recordPayment(t, NewGormInvoiceRepository(db), NewGormPaymentRepository(db), inv.ID, "30", "REF-"+fx.client.ClientNumber)

		debt, err := notification.New(notification.KindPayment, paid.Payments[0].ID, "debt remains")
		require.NoError(t, err)
		require.NoError(t, NewGormNotificationRepository(db).Save(ctx, debt))

		anomaly, err := notification.New(notification.KindReading, fx.reading.ID, "abnormal consumption")
		require.NoError(t, err)
		require.NoError(t, NewGormNotificationRepository(db).Save(ctx, anomaly))
	}

	require.NoError(t, NewGormClientRepository(db).Delete(ctx, doomed.client.ID))

	assert.Equal(t, int64(1), countRows(t, db, &models.ClientModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.ContractModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.TariffAssignmentModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.MeterModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.ReadingModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.InvoiceModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.PaymentModel{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.NotificationModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.TariffModel{}))

	_, err := NewGormContractRepository(db).FindByID(ctx, kept.contract.ID)
	assert.NoError(t, err)
	_, err = NewGormReadingRepository(db).FindByID(ctx, doomed.reading.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCascade_DeletingTariffRemovesAssignments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "203")
	tf := seedTariff(t, db, 3)

	a, err := tariff.NewAssignment(fx.contract.ID, tf.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, NewGormAssignmentRepository(db).Create(ctx, a))

	require.NoError(t, NewGormTariffRepository(db).Delete(ctx, tf.ID))

	current, err := NewGormAssignmentRepository(db).FindByContract(ctx, fx.contract.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Equal(t, int64(1), countRows(t, db, &models.ContractModel{}))
}

func TestCascade_DeletingPaymentRemovesItsNotices(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fx := seedChain(t, db, "204")
	inv := seedInvoice(t, db, fx.reading.ID, "100.00")
	paid := recordPayment(t, NewGormInvoiceRepository(db), NewGormPaymentRepository(db), inv.ID, "30", "REF-204")

	debt, err := notification.New(notification.KindPayment, paid.Payments[0].ID, "debt remains")
	require.NoError(t, err)
	require.NoError(t, NewGormNotificationRepository(db).Save(ctx, debt))

	require.NoError(t, NewGormPaymentRepository(db).Delete(ctx, paid.Payments[0].ID))

	_, err = NewGormNotificationRepository(db).FindByID(ctx, debt.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
