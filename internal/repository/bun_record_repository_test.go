package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func testDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := bunx.NewDB(":memory:", 0)
	require.NoError(t, err)
	require.NoError(t, InitSchema(context.Background(), db))
	t.Cleanup(func() { _ = bunx.Close(db) })
	return db
}

func TestBunRecordRepository_CreateAssignsIDAndTimestamps(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))
	ctx := context.Background()

	ind := &models.Industry{Name: "Banking"}
	require.NoError(t, repo.Create(ctx, ind))

	assert.NotEmpty(t, ind.ID)
	assert.False(t, ind.CreatedAt.IsZero())
	assert.False(t, ind.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, ind.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Banking", got.Name)
}

func TestBunRecordRepository_GetNotFound(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))

	_, err := repo.Get(context.Background(), "no-such-id", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunRecordRepository_GetLoadsRelations(t *testing.T) {
	db := testDB(t)
	industries := NewBunRecordRepository[models.Industry](db)
	clients := NewBunRecordRepository[models.Client](db)
	ctx := context.Background()

	ind := &models.Industry{Name: "Insurance"}
	require.NoError(t, industries.Create(ctx, ind))
	cl := &models.Client{Name: "Acme", Email: "ops@acme.test", IndustryID: ind.ID}
	require.NoError(t, clients.Create(ctx, cl))

	got, err := clients.Get(ctx, cl.ID, []string{"Industry"})
	require.NoError(t, err)
	require.NotNil(t, got.Industry)
	assert.Equal(t, "Insurance", got.Industry.Name)
}

func TestBunRecordRepository_FindOne(t *testing.T) {
	db := testDB(t)
	industries := NewBunRecordRepository[models.Industry](db)
	ratings := NewBunRecordRepository[models.Rating](db)
	ctx := context.Background()

	require.NoError(t, industries.Create(ctx, &models.Industry{Name: "Telecom"}))
	require.NoError(t, ratings.Create(ctx, &models.Rating{Year: 2025, ClientID: "c-1", Status: models.RatingStatusPending}))

	t.Run("match", func(t *testing.T) {
		got, err := ratings.FindOne(ctx, map[string]any{"year": 2025, "client_id": "c-1"})
		require.NoError(t, err)
		assert.Equal(t, 2025, got.Year)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := ratings.FindOne(ctx, map[string]any{"year": 2024, "client_id": "c-1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunRecordRepository_UpdateWritesOnlyGivenColumns(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))
	ctx := context.Background()

	ind := &models.Industry{Name: "Energy", Description: "power and utilities"}
	require.NoError(t, repo.Create(ctx, ind))

	// The submitted record has a different description, but only the name
	// column is declared, so the description must survive.
	next := &models.Industry{ID: ind.ID, Name: "Power", Description: "overwritten"}
	require.NoError(t, repo.Update(ctx, next, []string{"name"}))

	got, err := repo.Get(ctx, ind.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Power", got.Name)
	assert.Equal(t, "power and utilities", got.Description)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestBunRecordRepository_UpdateMissingRecord(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))

	next := &models.Industry{ID: "no-such-id", Name: "Ghost"}
	err := repo.Update(context.Background(), next, []string{"name"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunRecordRepository_DeleteReturnsDeletedRecord(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))
	ctx := context.Background()

	ind := &models.Industry{Name: "Mining"}
	require.NoError(t, repo.Create(ctx, ind))

	deleted, err := repo.Delete(ctx, ind.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mining", deleted.Name)

	_, err = repo.Get(ctx, ind.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Delete(ctx, ind.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunRecordRepository_ListPaginates(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Create(ctx, &models.Industry{Name: fmt.Sprintf("industry-%02d", i)}))
	}

	result, err := repo.List(ctx, pagination.Request{Page: 3, Limit: 10, OrderBy: "name ASC"})
	require.NoError(t, err)

	assert.Equal(t, 25, result.TotalDocs)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 3, result.Page)
	assert.Len(t, result.Docs, 5)
	assert.Equal(t, "industry-20", result.Docs[0].Name)
	assert.False(t, result.HasNextPage)
	assert.True(t, result.HasPrevPage)
}

func TestBunRecordRepository_ListAppliesWhere(t *testing.T) {
	repo := NewBunRecordRepository[models.Rating](testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Rating{Year: 2024, ClientID: "c-1", Status: models.RatingStatusConcluded}))
	require.NoError(t, repo.Create(ctx, &models.Rating{Year: 2025, ClientID: "c-1", Status: models.RatingStatusPending}))
	require.NoError(t, repo.Create(ctx, &models.Rating{Year: 2025, ClientID: "c-2", Status: models.RatingStatusPending}))

	result, err := repo.List(ctx, pagination.Request{Where: map[string]any{"client_id": "c-1"}, OrderBy: "year ASC"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalDocs)
	require.Len(t, result.Docs, 2)
	assert.Equal(t, 2024, result.Docs[0].Year)
}

func TestBunRecordRepository_ListNormalizesRequest(t *testing.T) {
	repo := NewBunRecordRepository[models.Industry](testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Industry{Name: "Agriculture"}))

	result, err := repo.List(ctx, pagination.Request{Page: -3, Limit: 0})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 10, result.Limit)
	assert.Len(t, result.Docs, 1)
}

func TestBunAuditRepository_AppendAndListNewestFirst(t *testing.T) {
	repo := NewBunAuditRepository(testDB(t))
	ctx := context.Background()

	for _, table := range []string{"clients", "ratings", "contacts"} {
		require.NoError(t, repo.Append(ctx, &models.AuditRecord{
			User:    `{"id":"u-1"}`,
			Table:   table,
			Action:  models.AuditActionCreate,
			Message: table + " table was created",
		}))
	}

	result, err := repo.List(ctx, pagination.Request{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalDocs)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Docs, 2)
}
