package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-plate-inspector/pkg/models"
)

// prepareRecord fills in the ID and creation time of a new record
func prepareRecord(record *models.DetectionRecord) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
}

// MemoryDetectionRepository keeps a bounded history in memory
type MemoryDetectionRepository struct {
	mu       sync.RWMutex
	records  map[string]*models.DetectionRecord
	order    []string
	capacity int
}

// NewMemoryDetectionRepository keeps at most capacity records (0 means unbounded)
func NewMemoryDetectionRepository(capacity int) *MemoryDetectionRepository {
	return &MemoryDetectionRepository{
		records:  make(map[string]*models.DetectionRecord),
		capacity: capacity,
	}
}

// Save stores a copy of record
func (r *MemoryDetectionRepository) Save(ctx context.Context, record *models.DetectionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prepareRecord(record)
	cp := *record

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[cp.ID]; !exists {
		r.order = append(r.order, cp.ID)
	}
	r.records[cp.ID] = &cp

	if r.capacity > 0 && len(r.order) > r.capacity {
		evict := r.order[0]
		r.order = r.order[1:]
		delete(r.records, evict)
	}
	return nil
}

// Get retrieves a record by ID
func (r *MemoryDetectionRepository) Get(ctx context.Context, id string) (*models.DetectionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrDetectionNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns the newest records first
func (r *MemoryDetectionRepository) List(ctx context.Context, limit int) ([]*models.DetectionRecord, error) {
	r.mu.RLock()
	out := make([]*models.DetectionRecord, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op
func (r *MemoryDetectionRepository) Close() error {
	return nil
}
