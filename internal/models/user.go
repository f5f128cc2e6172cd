package models

import "time"

// Timestamps is embedded by every record. Domain helpers stamp both fields
// explicitly, so GORM's automatic time tracking is switched off.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// Stamp sets both timestamps for a freshly created record
func (t *Timestamps) Stamp(now time.Time) {
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch records a mutation time
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now
}

// User is the account every other record is scoped by
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"not null;uniqueIndex" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	BusinessName string `gorm:"not null" json:"businessName"`
	Timestamps
}

func (User) TableName() string { return TableUsers }

func (u User) PrimaryKey() string { return u.ID }
