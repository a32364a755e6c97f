package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/testutil"
)

func TestGetCategoriesSeededAndOrdered(t *testing.T) {
	store := testutil.NewTestDatabase(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories, "migrations seed default categories")

	for i := 1; i < len(categories); i++ {
		assert.Greater(t, categories[i].ID, categories[i-1].ID, "categories come back in id order")
	}

	salary, err := store.GetCategoryByName(ctx, "Lương")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeIncome, salary.Type)
}

func TestCreateCategory(t *testing.T) {
	store := testutil.NewTestDatabase(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Thú cưng", "Pets", model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.NotZero(t, cat.ID)
	assert.True(t, cat.IsActive)

	// Duplicates are rejected.
	_, err = store.CreateCategory(ctx, "Thú cưng", "", model.CategoryTypeExpense)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	// Empty type defaults to expense.
	cat2, err := store.CreateCategory(ctx, "Khác", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeExpense, cat2.Type)
}

func TestDeleteCategorySoftDeleteAndReactivate(t *testing.T) {
	store := testutil.NewTestDatabase(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Tạm thời", "", model.CategoryTypeExpense)
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, cat.ID))

	_, err = store.GetCategoryByName(ctx, "Tạm thời")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Creating the same name again reactivates the soft-deleted row.
	again, err := store.CreateCategory(ctx, "Tạm thời", "", model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, again.ID)

	// Deleting a missing id reports not found.
	assert.ErrorIs(t, store.DeleteCategory(ctx, 99999), common.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	store := testutil.NewTestDatabase(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Sách", "", model.CategoryTypeExpense)
	require.NoError(t, err)

	require.NoError(t, store.UpdateCategory(ctx, cat.ID, "Sách vở", "Books and stationery"))

	updated, err := store.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sách vở", updated.Name)
	assert.Equal(t, "Books and stationery", updated.Description)

	assert.ErrorIs(t, store.UpdateCategory(ctx, 99999, "x", ""), common.ErrNotFound)
}
