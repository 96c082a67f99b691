package models

// User is an account that owns a personal Pokémon collection.
// The first user ever registered is granted admin rights.
type User struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Login    string `gorm:"uniqueIndex;not null" json:"login"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	Collection []CollectionMember `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
