package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layr-ai-api/internal/config"
	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/internal/domain/repository"
	"layr-ai-api/pkg/errors"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	cfg := &config.PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "layr",
		Password: "secret",
		Database: "plans",
		SSLMode:  "require",
	}
	assert.Equal(t, "host=db.internal port=5433 user=layr password=secret dbname=plans sslmode=require", DSN(cfg))
}

func TestPlanRepository_GetByIDRejectsMalformedID(t *testing.T) {
	t.Parallel()
	repo := NewPlanRepository(nil)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

// integrationClient 需要设置 LAYR_TEST_POSTGRES_HOST 才会运行
func integrationClient(t *testing.T) *Client {
	t.Helper()
	host := os.Getenv("LAYR_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("LAYR_TEST_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("LAYR_TEST_POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}
	cfg := &config.PostgresConfig{
		Host:         host,
		Port:         port,
		User:         os.Getenv("LAYR_TEST_POSTGRES_USER"),
		Password:     os.Getenv("LAYR_TEST_POSTGRES_PASSWORD"),
		Database:     os.Getenv("LAYR_TEST_POSTGRES_DB"),
		SSLMode:      "disable",
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		AutoMigrate:  true,
	}
	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPlanRepository_Integration(t *testing.T) {
	client := integrationClient(t)
	repo := NewPlanRepository(client)
	ctx := context.Background()

	record := &entity.PlanRecord{
		Prompt:       "Express API",
		Title:        "Express API - Backend API Project",
		GeneratedBy:  entity.GeneratedByRules,
		Requirements: pq.StringArray{"Node.js", "Express"},
		Plan:         []byte(`{"title":"Express API - Backend API Project"}`),
	}
	require.NoError(t, repo.Create(ctx, record))
	require.NotEmpty(t, record.ID)

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Title, got.Title)
	assert.Equal(t, []string{"Node.js", "Express"}, []string(got.Requirements))
	assert.JSONEq(t, string(record.Plan), string(got.Plan))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	page, err := repo.List(ctx, repository.NewPagination(1, 5))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.Total, int64(1))
	assert.NoError(t, repo.Ping(ctx))
}
