package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

var productCols = []string{"id", "name", "description", "price", "quantity", "user_id", "image_ids", "created_at", "updated_at"}

func TestProductPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProductPostgres(db)
	now := time.Now().UTC()
	p := &model.Product{
		ID:        "p-1",
		Name:      "Lamp",
		Price:     decimal.RequireFromString("19.99"),
		Quantity:  3,
		UserID:    "seller-1",
		ImageIDs:  []string{"m-1", "m-2"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO products").
		WithArgs(p.ID, p.Name, "", sqlmock.AnyArg(), 3, p.UserID, `["m-1","m-2"]`, now, now).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(p.ID, p.Name, "", "19.99", 3, p.UserID, []byte(`["m-1","m-2"]`), now, now))

	got, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(p.Price))
	assert.Equal(t, []string{"m-1", "m-2"}, got.ImageIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_CreateWithoutImages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("p-2", "Mug", "", sqlmock.AnyArg(), 0, "seller-1", `[]`, now, now).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-2", "Mug", "", "0", 0, "seller-1", []byte(`[]`), now, now))

	got, err := NewProductPostgres(db).Create(context.Background(), &model.Product{
		ID: "p-2", Name: "Mug", UserID: "seller-1", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotNil(t, got.ImageIDs)
	assert.Empty(t, got.ImageIDs)
}

func TestProductPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProductPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
			WithArgs("p-1").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p-1", "Lamp", "desk lamp", "5.50", 1, "seller-1", []byte(`["gone-media"]`), time.Now(), time.Now()))

		p, err := repo.FindByID(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "desk lamp", p.Description)
		assert.Equal(t, []string{"gone-media"}, p.ImageIDs)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(productCols))

		p, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, p)
	})
}

func TestProductPostgres_FindByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProductPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM products WHERE user_id =").
			WithArgs("seller-1").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p-1", "Lamp", "", "1", 1, "seller-1", []byte(`[]`), time.Now(), time.Now()).
				AddRow("p-2", "Mug", "", "2", 2, "seller-1", []byte(`[]`), time.Now(), time.Now()))

		items, err := repo.FindByUserID(ctx, "seller-1")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM products WHERE user_id =").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByUserID(ctx, "seller-1")
		assert.Error(t, err)
	})
}

func TestProductPostgres_FindAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY").
		WillReturnRows(sqlmock.NewRows(productCols))

	items, err := NewProductPostgres(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestProductPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	p := &model.Product{ID: "p-1", Name: "Lamp v2", Price: decimal.NewFromInt(7), Quantity: 9, UserID: "seller-1", ImageIDs: []string{"m-3"}, UpdatedAt: now}

	mock.ExpectQuery("UPDATE products").
		WithArgs(p.ID, p.Name, "", sqlmock.AnyArg(), 9, `["m-3"]`, now).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(p.ID, p.Name, "", "7", 9, "seller-1", []byte(`["m-3"]`), now, now))

	got, err := NewProductPostgres(db).Update(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM products WHERE id =").
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewProductPostgres(db).Delete(context.Background(), "p-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
