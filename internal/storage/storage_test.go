package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quicksell-bot/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedShop(t *testing.T, db *DB, telegramID int64) (*models.User, *models.Shop) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{TelegramID: telegramID, Name: "Owner", Location: "Line 3"}
	require.NoError(t, db.UpsertUser(ctx, u))
	s := &models.Shop{ShopNumber: 12, Location: "Line 3", OwnerID: u.ID}
	require.NoError(t, db.InsertShop(ctx, s))
	return u, s
}

func TestResolve(t *testing.T) {
	d, src, schema := resolve("postgres://u:p@localhost/quick_sell")
	require.Equal(t, "pgx", d)
	require.Equal(t, "postgres://u:p@localhost/quick_sell", src)
	require.Equal(t, "schema/postgres.sql", schema)

	d, src, _ = resolve("sqlite://bot.db")
	require.Equal(t, "sqlite", d)
	require.Equal(t, "bot.db?_pragma=foreign_keys(1)", src)

	_, src, _ = resolve("file:x?mode=memory")
	require.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)", src)
}

func TestUpsertUserKeepsID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u := &models.User{TelegramID: 42, Name: "Ann", Location: "A"}
	require.NoError(t, db.UpsertUser(ctx, u))
	first := u.ID

	again := &models.User{TelegramID: 42, Name: "Anna", Location: "B"}
	require.NoError(t, db.UpsertUser(ctx, again))
	require.Equal(t, first, again.ID)

	got, err := db.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "Anna", got.Name)
	require.Equal(t, "B", got.Location)
	require.Equal(t, "en", got.Language)

	missing, err := db.GetUserByTelegramID(ctx, 7)
	require.NoError(t, err)
	require.Nil(t, missing)

	stats, err := db.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Users)
}

func TestProductRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u, shop := seedShop(t, db, 1)

	p := &models.Product{
		ShopID: shop.ID, Name: "Carpet", Quantity: 2,
		Price: decimal.RequireFromString("149.90"), Size: "200x300", Color: "red", Material: "wool",
	}
	require.NoError(t, db.InsertProduct(ctx, p))
	require.NotZero(t, p.ID)

	got, err := db.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProductAvailable, got.Status)
	require.True(t, got.Price.Equal(decimal.RequireFromString("149.9")))

	require.NoError(t, db.UpdateProductStock(ctx, p.ID, models.ProductSold, 1))
	got, err = db.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProductSold, got.Status)
	require.Equal(t, 1, got.Quantity)

	// sold products cannot be deleted
	ok, err := db.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, ok)

	list, err := db.ListProductsByOwner(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, other := seedShop(t, db, 2)
	require.NoError(t, db.InsertProduct(ctx, &models.Product{ShopID: other.ID, Name: "Rug", Quantity: 1, Price: decimal.NewFromInt(5)}))
	total, err := db.count(ctx, `SELECT COUNT(*) FROM products`)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	list, err = db.ListProductsByOwner(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestNegativeQuantityRejected(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, shop := seedShop(t, db, 1)

	p := &models.Product{ShopID: shop.ID, Name: "Lamp", Quantity: 1, Price: decimal.NewFromInt(10)}
	require.NoError(t, db.InsertProduct(ctx, p))
	require.Error(t, db.UpdateProductStock(ctx, p.ID, models.ProductSold, -1))
}

func TestUpdateDebtPaymentVersionCheck(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	d := &models.Debt{SaleID: 1, TotalAmount: decimal.NewFromInt(100), PaidAmount: decimal.Zero}
	require.NoError(t, db.InsertDebt(ctx, d))

	stale := *d
	d.PaidAmount = decimal.NewFromInt(40)
	ok, err := db.UpdateDebtPayment(ctx, d)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, d.Version)

	stale.PaidAmount = decimal.NewFromInt(90)
	ok, err = db.UpdateDebtPayment(ctx, &stale)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := db.GetDebt(ctx, d.ID)
	require.NoError(t, err)
	require.True(t, got.PaidAmount.Equal(decimal.NewFromInt(40)))
	require.False(t, got.IsSettled)
}

func TestListSalesByOwnerRange(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u, shop := seedShop(t, db, 1)

	p := &models.Product{ShopID: shop.ID, Name: "Vase", Quantity: 5, Price: decimal.NewFromInt(10)}
	require.NoError(t, db.InsertProduct(ctx, p))

	cash := models.PaymentCash
	for i, ts := range []int64{100, 200, 300} {
		s := &models.Sale{ProductID: p.ID, BuyerName: "B", Price: decimal.NewFromInt(int64(10 * (i + 1))), PaymentType: &cash, IsCleared: true, CreatedAt: ts}
		require.NoError(t, db.InsertSale(ctx, s))
	}

	sales, err := db.ListSalesByOwner(ctx, u.ID, 150, 0)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	require.EqualValues(t, 300, sales[0].CreatedAt)
	require.Equal(t, "Vase", sales[0].ProductName)
	require.Equal(t, models.PaymentCash, *sales[0].PaymentType)

	sales, err = db.ListSalesByOwner(ctx, u.ID+1, 0, 0)
	require.NoError(t, err)
	require.Empty(t, sales)
}

func TestInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.InTx(ctx, func(tx *Tx) error {
		require.NoError(t, tx.UpsertUser(ctx, &models.User{TelegramID: 9, Name: "Tmp"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := db.GetUserByTelegramID(ctx, 9)
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestPayments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u, _ := seedShop(t, db, 77)

	require.NoError(t, db.InsertPayment(ctx, &models.Payment{
		UserID: u.ID, Amount: decimal.RequireFromString("9.99"), PlanType: "1 Month",
		Status: "completed", Method: "simulated", TransactionID: "t1", CreatedAt: 10, ExpiresAt: 1000,
	}))
	require.NoError(t, db.InsertPayment(ctx, &models.Payment{
		UserID: u.ID, Amount: decimal.RequireFromString("24.99"), PlanType: "3 Months",
		Status: "completed", Method: "simulated", TransactionID: "t2", CreatedAt: 20, ExpiresAt: 5000,
	}))

	latest, err := db.LatestPayment(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "t2", latest.TransactionID)

	// t1 was renewed by t2
	exp, err := db.ListPaymentsExpiring(ctx, 900, 1100)
	require.NoError(t, err)
	require.Empty(t, exp)

	exp, err = db.ListPaymentsExpiring(ctx, 4900, 5100)
	require.NoError(t, err)
	require.Len(t, exp, 1)
	require.EqualValues(t, 77, exp[0].TelegramID)
	require.Equal(t, "t2", exp[0].TransactionID)
}

func TestPaymentsExpiringPerUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a, _ := seedShop(t, db, 1)
	b, _ := seedShop(t, db, 2)

	for _, p := range []models.Payment{
		{UserID: a.ID, TransactionID: "a1", ExpiresAt: 1000},
		{UserID: b.ID, TransactionID: "b1", ExpiresAt: 1050},
		{UserID: b.ID, TransactionID: "b0", ExpiresAt: 1200, Status: "failed"},
	} {
		p.Amount = decimal.RequireFromString("9.99")
		p.PlanType = "1 Month"
		p.Method = "simulated"
		p.CreatedAt = 10
		if p.Status == "" {
			p.Status = "completed"
		}
		require.NoError(t, db.InsertPayment(ctx, &p))
	}

	exp, err := db.ListPaymentsExpiring(ctx, 900, 1100)
	require.NoError(t, err)
	require.Len(t, exp, 2)
	require.Equal(t, "a1", exp[0].TransactionID)
	require.Equal(t, "b1", exp[1].TransactionID)
}
