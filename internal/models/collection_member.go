package models

// CollectionMember is one Pokémon in a user's collection. A single row can be
// flagged as a favorite, a battle team member, or both; removal deletes the
// row rather than toggling flags.
type CollectionMember struct {
	BaseModel

	UserID string `gorm:"not null;type:uuid;index:idx_collection_user_code;index:idx_collection_user_flags" json:"user_id"`
	User   *User  `json:"-"`

	TypeID *string      `gorm:"type:uuid" json:"type_id"`
	Type   *PokemonType `json:"type,omitempty"`

	Code     string  `gorm:"not null;size:50;index:idx_collection_user_code" json:"code"`
	Name     string  `gorm:"not null;size:120" json:"name"`
	ImageURL *string `gorm:"size:255" json:"image_url"`

	IsTeamMember bool `gorm:"default:false;index:idx_collection_user_flags" json:"is_team_member"`
	IsFavorite   bool `gorm:"default:false;index:idx_collection_user_flags" json:"is_favorite"`
}
