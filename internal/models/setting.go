package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// Setting is a single key/value configuration row.
type Setting struct {
	ID        uint        `gorm:"primarykey" json:"-"`
	Key       string      `gorm:"uniqueIndex;size:128" json:"key"`
	Value     string      `gorm:"size:255" json:"value"`
	UpdatedBy null.String `gorm:"size:128" json:"updatedBy"`
	CreatedAt time.Time   `json:"-"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Setting keys.
const (
	SettingEncryptionEnabled = "drm.encryption.enabled"
)
