package persistence

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/gridledger/billing/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with foreign keys on
// and the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

var testToday = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// fixture is one fully linked Client -> Contract -> Meter -> Reading chain
type fixture struct {
	client   *customer.Client
	contract *customer.Contract
	meter    *metering.Meter
	reading  *metering.Reading
}

func seedChain(t *testing.T, db *gorm.DB, suffix string) fixture {
	t.Helper()
	ctx := context.Background()

	client, err := customer.NewClient("CL-"+suffix, "Client "+suffix, "client"+suffix+"@example.com", "555-0100")
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	contract, err := customer.NewContract("CT-"+suffix, client.ID,
		testToday.AddDate(0, -1, 0), testToday.AddDate(1, 0, 0), customer.ContractStatusActive, testToday)
	require.NoError(t, err)
	require.NoError(t, NewGormContractRepository(db).Save(ctx, contract))

	meter, err := metering.NewMeter("MT-"+suffix, contract.ID, testToday.AddDate(0, -1, 0), "Basement", metering.MeterStatusActive)
	require.NoError(t, err)
	require.NoError(t, NewGormMeterRepository(db).Save(ctx, meter))

	reading, err := metering.NewReading(meter.ID, testToday, 120, metering.ReadingKindDigital, 1120)
	require.NoError(t, err)
	require.NoError(t, NewGormReadingRepository(db).Save(ctx, reading))

	return fixture{client: client, contract: contract, meter: meter, reading: reading}
}

func seedInvoice(t *testing.T, db *gorm.DB, readingID uuid.UUID, total string) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(readingID, testToday, testToday.AddDate(0, 0, 15), dec(total), 100)
	require.NoError(t, err)
	require.NoError(t, NewGormInvoiceRepository(db).Save(context.Background(), inv))
	return inv
}

func seedTariff(t *testing.T, db *gorm.DB, price int64) *tariff.Tariff {
	t.Helper()
	tf, err := tariff.NewTariff(tariff.SeasonSummer, tariff.ClientClassResidential, price, testToday)
	require.NoError(t, err)
	require.NoError(t, NewGormTariffRepository(db).Save(context.Background(), tf))
	return tf
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedInvoiceValue builds an invoice without touching any database
func seedInvoiceValue(t *testing.T) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(uuid.New(), testToday, testToday.AddDate(0, 0, 15), dec("100"), 100)
	require.NoError(t, err)
	return inv
}
