// Package settings persists the DRM settings row. The gorm store keeps a
// write-through cache so reads after a write always observe the written
// value even if a replica lags.
package settings

import (
	"context"
	"strconv"
	"sync"

	"github.com/guregu/null/v6"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/eligiorbautista/drmlive/internal/models"
)

// Store reads and writes settings rows through gorm.
type Store struct {
	db *gorm.DB

	mu     sync.RWMutex
	cached map[string]string
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		cached: make(map[string]string),
	}
}

// EncryptionEnabled reports whether DRM encryption is turned on. A missing
// row means disabled.
func (s *Store) EncryptionEnabled(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, models.SettingEncryptionEnabled)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetEncryptionEnabled writes the encryption flag.
func (s *Store) SetEncryptionEnabled(ctx context.Context, enabled bool, updatedBy string) error {
	return s.set(ctx, models.SettingEncryptionEnabled, strconv.FormatBool(enabled), updatedBy)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	v, ok := s.cached[key]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}

	var row models.Setting
	err := s.db.WithContext(ctx).
		Where(&models.Setting{Key: key}).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", errors.Wrapf(err, "get setting %s", key)
	}

	s.mu.Lock()
	s.cached[key] = row.Value
	s.mu.Unlock()
	return row.Value, nil
}

func (s *Store) set(ctx context.Context, key, value, updatedBy string) error {
	row := models.Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: null.StringFrom(updatedBy),
	}
	err := s.db.WithContext(ctx).
		Where(&models.Setting{Key: key}).
		Assign(map[string]any{"value": value, "updated_by": updatedBy}).
		FirstOrCreate(&row).
		Error
	if err != nil {
		return errors.Wrapf(err, "set setting %s", key)
	}

	s.mu.Lock()
	s.cached[key] = value
	s.mu.Unlock()
	return nil
}
