package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Available   bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const DefaultCategory = "General"

// Patch lists the fields an update may change. Nil fields are left alone;
// ID and CreatedAt are never patchable.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Available   *bool
	ImageURL    *string
}

func (m MenuItem) Apply(p Patch, now time.Time) MenuItem {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Available != nil {
		m.Available = *p.Available
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	m.UpdatedAt = now
	return m
}
