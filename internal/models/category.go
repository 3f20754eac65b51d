package models

// Category is a named label a story may be filed under.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id" yaml:"-"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name" yaml:"name"`
}
