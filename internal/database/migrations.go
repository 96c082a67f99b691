package database

import (
	"gorm.io/gorm"

	"github.com/brunodmn/pokehub/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PokemonType{},
		&models.CollectionMember{},
	)
}

// typeSlugs mirrors the damage type slugs exposed by the PokeAPI /type listing.
var typeSlugs = []string{
	"normal", "fighting", "flying", "poison", "ground", "rock",
	"bug", "ghost", "steel", "fire", "water", "grass",
	"electric", "psychic", "ice", "dragon", "dark", "fairy",
	"stellar", "unknown", "shadow",
}

// SeedData populates the Pokémon type lookup table. The table is read-only
// after seeding; inserts are idempotent across restarts.
func SeedData(db *gorm.DB) error {
	for _, slug := range typeSlugs {
		entry := models.PokemonType{Slug: slug}
		if err := db.Where(models.PokemonType{Slug: slug}).Attrs(entry).FirstOrCreate(&models.PokemonType{}).Error; err != nil {
			return err
		}
	}
	return nil
}
