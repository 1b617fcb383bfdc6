package models

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Range groups nuts by diameter interval. Od must stay below Do.
type Range struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nazwa     string    `gorm:"size:100;not null" json:"nazwa"`
	Od        float64   `gorm:"column:od;not null" json:"od"`
	Do        float64   `gorm:"column:do;not null" json:"do"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Range) TableName() string { return "ranges" }

type Nut struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IDZakresu uint      `gorm:"column:id_zakresu;not null;index" json:"id_zakresu"`
	Nazwa     string    `gorm:"size:100;not null" json:"nazwa"`
	Srednica  float64   `gorm:"not null" json:"srednica"`
	Cena      Price     `gorm:"not null" json:"cena"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Range *Range `gorm:"foreignKey:IDZakresu;constraint:OnDelete:CASCADE" json:"-"`
}

func (Nut) TableName() string { return "nuts" }

type ScrewLength struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Srednica  float64   `gorm:"not null;uniqueIndex:idx_screw_lengths_pair,priority:1" json:"srednica"`
	Dlugosc   float64   `gorm:"not null;uniqueIndex:idx_screw_lengths_pair,priority:2" json:"dlugosc"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ScrewLength) TableName() string { return "screw_lengths" }

// All lists every persisted model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{&User{}, &Range{}, &Nut{}, &ScrewLength{}}
}
