// Package dbtest opens isolated sqlite databases migrated with the service
// models, for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/carhire-backend/pkg/db"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// Open returns a fresh in-memory database. Each call gets its own schema so
// parallel tests never share rows.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Location{},
		&models.LocationTranslation{},
		&models.Vehicle{},
		&models.LocationVehiclePricing{},
		&models.LocationDeliveryPricing{},
		&models.Campaign{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Client wraps conn in the pkg/db client so services get WithTx.
func Client(conn *gorm.DB) *db.Client {
	return db.FromConn(conn)
}

// MustCreateLocation inserts an active top-level office unless opts override it.
func MustCreateLocation(t testing.TB, conn *gorm.DB, tenantID uuid.UUID, name string, opts ...func(*models.Location)) *models.Location {
	t.Helper()
	loc := &models.Location{
		TenantID:     tenantID,
		Name:         name,
		Type:         enums.LocationTypeOffice,
		DeliveryFee:  decimal.Zero,
		DropFee:      decimal.Zero,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(loc)
	}
	if err := conn.Create(loc).Error; err != nil {
		t.Fatalf("create location: %v", err)
	}
	return loc
}

// MustCreateVehicle inserts an active vehicle.
func MustCreateVehicle(t testing.TB, conn *gorm.DB, tenantID uuid.UUID, name string, categoryID *uuid.UUID) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{
		TenantID:   tenantID,
		Name:       name,
		CategoryID: categoryID,
		IsActive:   true,
	}
	if err := conn.Create(v).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

// WithParent makes the location a child of parentID.
func WithParent(parentID uuid.UUID) func(*models.Location) {
	return func(l *models.Location) {
		l.ParentID = &parentID
	}
}
