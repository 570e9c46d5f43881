package catalog

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"cafesantander/apperr"
	"cafesantander/config"
	"cafesantander/database"
	"cafesantander/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	return db
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateAndGet(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: " Espresso ", Price: price("2.50"), Image: "/public/img/espresso.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Espresso", p.Name)
	assert.True(t, p.Available)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, price("2.5").Equal(got.Price))

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Price: price("1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, ProductInput{Name: "Free lunch", Price: decimal.Zero})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, ProductInput{Name: "Refund", Price: price("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUnavailableProductsAreHidden(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()
	off := false

	_, err := svc.Create(ctx, ProductInput{Name: "Latte", Price: price("3")})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, ProductInput{Name: "Mocha", Price: price("3.5"), Available: &off})
	require.NoError(t, err)
	assert.False(t, hidden.Available)

	public, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Latte", public[0].Name)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearch(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()
	for _, n := range []string{"Café con leche", "Croissant", "Cortado"} {
		_, err := svc.Create(ctx, ProductInput{Name: n, Price: price("2")})
		require.NoError(t, err)
	}

	got, err := svc.Search(ctx, "cro")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Croissant", got[0].Name)

	got, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestUpdateKeepsCartSnapshot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Espresso", Price: price("2.50")})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.CartItem{CartID: 1, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price}).Error)

	updated, err := svc.Update(ctx, p.ID, ProductInput{Name: "Espresso doble", Price: price("3.20")})
	require.NoError(t, err)
	assert.Equal(t, "Espresso doble", updated.Name)
	assert.True(t, updated.Available) // untouched when omitted

	var item models.CartItem
	require.NoError(t, db.First(&item).Error)
	assert.True(t, price("2.5").Equal(item.UnitPrice))

	_, err = svc.Update(ctx, 999, ProductInput{Name: "x", Price: price("1")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteRemovesCartLines(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Espresso", Price: price("2.50")})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.CartItem{CartID: 1, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}).Error)

	require.NoError(t, svc.Delete(ctx, p.ID))
	var items int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID), apperr.ErrNotFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := NewService(setupTestDB(t))
	ctx := context.Background()
	off := false
	_, err := src.Create(ctx, ProductInput{Name: "Espresso", Price: price("2.50")})
	require.NoError(t, err)
	_, err = src.Create(ctx, ProductInput{Name: "Mocha", Price: price("3.75"), Available: &off})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportXLSX(ctx, &buf))
	require.NotZero(t, buf.Len())

	// Same store: rows carry existing ids and update in place
	res, err := src.ImportXLSX(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 2}, res)

	// Fresh store: the same rows become new products
	dst := NewService(setupTestDB(t))
	res, err = dst.ImportXLSX(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2}, res)

	got, err := dst.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Espresso", got[0].Name)
	assert.True(t, price("2.5").Equal(got[0].Price))
	assert.False(t, got[1].Available)
}

func TestImportRejectsGarbage(t *testing.T) {
	svc := NewService(setupTestDB(t))
	data := []byte("not a workbook")
	_, err := svc.ImportXLSX(context.Background(), bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
