//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	migrations "fieldnorm/internal/migrations/mongo"
	"fieldnorm/pkg/envcode"
	"fieldnorm/pkg/logger"
	"fieldnorm/pkg/model"
	"fieldnorm/pkg/testutil/containers"
	"fieldnorm/pkg/uuidv7"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationRecord(t *testing.T, name string) *model.NormalizedRecord {
	t.Helper()
	id := uuidv7.Generate()
	ts, ok := uuidv7.DecodeTimestamp(id)
	require.True(t, ok)

	code := "R12.01"
	return &model.NormalizedRecord{
		ID:         id.String(),
		CreatedAt:  ts.Time(),
		Source:     model.SourceHTTP,
		Name:       name,
		Code:       &code,
		CodeFamily: envcode.FamilyRecovery.String(),
		Tags:       []string{"a"},
		Quantity:   12,
	}
}

func TestMongoRecordRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client := containers.NewMongo(t)
	db := client.Database("fieldnorm_test")
	require.NoError(t, migrations.RunMigration(ctx, db, "records", logger.Nop()))
	// Re-running against an existing collection only refreshes the validator.
	require.NoError(t, migrations.RunMigration(ctx, db, "records", logger.Nop()))

	repo := NewMongoRecordRepository(client, "fieldnorm_test", "records", 5*time.Second)
	require.NoError(t, repo.Ping(ctx))

	first := newIntegrationRecord(t, "Ada Lovelace")
	require.NoError(t, repo.Upsert(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := newIntegrationRecord(t, "Alan Turing")
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "R12.01", *got.Code)
	assert.Equal(t, []string{"a"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))

	first.Name = "Augusta Ada King"
	require.NoError(t, repo.Upsert(ctx, first))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	records, err := repo.FindAll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, "Augusta Ada King", records[1].Name)

	_, err = repo.FindByID(ctx, uuidv7.Generate().String())
	assert.ErrorIs(t, err, ErrNotFound)
}
