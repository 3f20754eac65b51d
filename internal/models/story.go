package models

import "time"

// Story is a titled piece of text written by a user.
// CategoryID and ImageURL are nil when not set.
type Story struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`
	ImageURL   *string   `gorm:"size:512" json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE" json:"-"`
	Likes    []Like    `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE" json:"-"`
}
