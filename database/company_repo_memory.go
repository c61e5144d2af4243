package database

import (
	"context"
	"strconv"
	"sync"

	"github.com/rpupo63/company-rating-backend/errs"
	"github.com/rpupo63/company-rating-backend/models"
)

// MemoryCompanyRepo keeps records in process memory. Used for DB_TYPE=memory and in tests.
type MemoryCompanyRepo struct {
	mu      sync.RWMutex
	records []models.CompanyRecord
	nextID  int
}

func NewMemoryCompanyRepo() *MemoryCompanyRepo {
	return &MemoryCompanyRepo{}
}

// NewMemory returns a Database backed by a fresh MemoryCompanyRepo.
func NewMemory() Database {
	return New(NewMemoryCompanyRepo(), nil)
}

func (r *MemoryCompanyRepo) FindAll(ctx context.Context) ([]models.CompanyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CompanyRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (r *MemoryCompanyRepo) FindNames(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.Company
	}
	return names, nil
}

func (r *MemoryCompanyRepo) FindByName(ctx context.Context, name string) (*models.CompanyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(name); i >= 0 {
		rec := r.records[i].Clone()
		return &rec, nil
	}
	return nil, errs.NewNotFound("company")
}

// ReplaceAll swaps the whole collection under the write lock, so readers see either the old or the new set.
func (r *MemoryCompanyRepo) ReplaceAll(ctx context.Context, records []models.CompanyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.CompanyRecord, len(records))
	for i, rec := range records {
		rec = rec.Clone()
		r.nextID++
		rec.ID = strconv.Itoa(r.nextID)
		next[i] = rec
	}
	r.records = next
	return nil
}

func (r *MemoryCompanyRepo) Update(ctx context.Context, name string, expectedVersion *int64, update models.CompanyUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(name)
	if i < 0 {
		return false, nil
	}
	if expectedVersion != nil && r.records[i].Version != *expectedVersion {
		return false, nil
	}
	update.Apply(&r.records[i])
	return true, nil
}

func (r *MemoryCompanyRepo) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryCompanyRepo) indexOf(name string) int {
	for i := range r.records {
		if r.records[i].Company == name {
			return i
		}
	}
	return -1
}
