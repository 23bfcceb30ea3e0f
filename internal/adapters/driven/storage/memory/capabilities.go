package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

var (
	_ driven.CurrentUser = StaticUser{}
	_ driven.FocalPoint  = (*FocalPoint)(nil)
)

// StaticUser always reports the same account.
type StaticUser domain.Account

// Current returns the account.
func (u StaticUser) Current(_ context.Context) domain.Account {
	return domain.Account(u)
}

// FocalPoint is an in-memory implementation of driven.FocalPoint.
// Crops are keyed by file uuid.
type FocalPoint struct {
	mu    sync.RWMutex
	crops map[string]domain.Crop
}

// NewFocalPoint creates an empty focal point store.
func NewFocalPoint() *FocalPoint {
	return &FocalPoint{crops: make(map[string]domain.Crop)}
}

// Crop returns the crop of an image file.
func (f *FocalPoint) Crop(_ context.Context, file *domain.Entity) (domain.Crop, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.crops[file.UUID]
	return c, ok, nil
}

// SaveCrop stores the crop of a saved image file.
func (f *FocalPoint) SaveCrop(_ context.Context, file *domain.Entity, crop domain.Crop) error {
	if file.IsNew() {
		return domain.ErrInvalidInput
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crops[file.UUID] = crop
	return nil
}
