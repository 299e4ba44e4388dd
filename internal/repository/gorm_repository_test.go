package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-plate-inspector/pkg/models"
)

// sqlRecorder is a gorm logger that keeps every statement it is shown
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, sql)
}

func (r *sqlRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stmts) == 0 {
		return ""
	}
	return r.stmts[len(r.stmts)-1]
}

// dryRunRepository builds statements against the postgres dialect without
// opening a connection
func dryRunRepository(t *testing.T) (*GormDetectionRepository, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=plate dbname=plates sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return &GormDetectionRepository{db: db}, rec
}

func TestGormDetectionRepository_Statements(t *testing.T) {
	repo, rec := dryRunRepository(t)
	ctx := context.Background()

	t.Run("save fills id and upserts by key", func(t *testing.T) {
		r := &models.DetectionRecord{Source: "camera", Text: "MH12AB1234", Status: models.Match}
		require.NoError(t, repo.Save(ctx, r))

		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
		sql := rec.last()
		assert.Contains(t, sql, `UPDATE "plate_detections" SET`)
		assert.Contains(t, sql, `"text"='MH12AB1234'`)
		assert.Contains(t, sql, `WHERE "id" = '`+r.ID+`'`)
	})

	t.Run("get by id", func(t *testing.T) {
		_, err := repo.Get(ctx, "abc")
		require.NoError(t, err)
		sql := rec.last()
		assert.Contains(t, sql, `FROM "plate_detections" WHERE id = 'abc'`)
		assert.Contains(t, sql, "LIMIT 1")
	})

	t.Run("list newest first", func(t *testing.T) {
		_, err := repo.List(ctx, 5)
		require.NoError(t, err)
		sql := rec.last()
		assert.Contains(t, sql, "ORDER BY created_at DESC")
		assert.Contains(t, sql, "LIMIT 5")
	})

	t.Run("list without limit", func(t *testing.T) {
		_, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.NotContains(t, rec.last(), "LIMIT")
	})
}

func TestGormDetectionRepository_GetNotFound(t *testing.T) {
	repo, _ := dryRunRepository(t)
	// Simulate an empty result set
	require.NoError(t, repo.db.Callback().Query().After("gorm:query").
		Register("test:no_rows", func(tx *gorm.DB) { _ = tx.AddError(gorm.ErrRecordNotFound) }))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDetectionNotFound)
}

// TestGormDetectionRepository_PostgreSQL runs against a real database.
// Set PLATE_TEST_DATABASE_DSN to enable it.
func TestGormDetectionRepository_PostgreSQL(t *testing.T) {
	dsn := os.Getenv("PLATE_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("integration tests are disabled; set PLATE_TEST_DATABASE_DSN to enable")
	}

	repo, err := NewGormDetectionRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	// Rows from other runs may exist, so every record carries this run's source
	source := "it_" + uuid.NewString()[:8]
	base := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	var ids []string
	for i, text := range []string{"AAA111", "BBB222", "CCC333"} {
		r := &models.DetectionRecord{
			Source:     source,
			Text:       text,
			Status:     models.NoMatch,
			PlateFound: true,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Save(ctx, r))
		ids = append(ids, r.ID)
	}
	t.Cleanup(func() {
		repo.db.Where("source = ?", source).Delete(&models.DetectionRecord{})
	})

	got, err := repo.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "BBB222", got.Text)
	assert.Equal(t, source, got.Source)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Second)))

	// Saving an existing record updates it in place
	got.Status = models.Match
	require.NoError(t, repo.Save(ctx, got))
	again, err := repo.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, models.Match, again.Status)

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrDetectionNotFound)
}
