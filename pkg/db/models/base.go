package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a v4 id before insert so rows created outside Postgres
// (sqlite in tests) still carry a primary key.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (l *Location) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

func (p *LocationVehiclePricing) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (p *LocationDeliveryPricing) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (c *Campaign) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
