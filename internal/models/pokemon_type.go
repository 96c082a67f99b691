package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PokemonType is a read-only lookup entity seeded at migration time.
type PokemonType struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Slug string `gorm:"uniqueIndex;not null;size:60" json:"slug"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (t *PokemonType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
