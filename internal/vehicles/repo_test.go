package vehicles

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/carhire-backend/pkg/db/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryIsTenantScoped(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	tenant, other := uuid.New(), uuid.New()

	mine := dbtest.MustCreateVehicle(t, conn, tenant, "Fiat Egea", nil)
	theirs := dbtest.MustCreateVehicle(t, conn, other, "Renault Clio", nil)

	got, err := repo.FindByID(ctx, tenant, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fiat Egea", got.Name)

	_, err = repo.FindByID(ctx, tenant, theirs.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	found, err := repo.FindByIDs(ctx, tenant, []uuid.UUID{mine.ID, theirs.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, mine.ID)
}

func TestListActiveSkipsInactive(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	tenant := uuid.New()

	dbtest.MustCreateVehicle(t, conn, tenant, "B", nil)
	dbtest.MustCreateVehicle(t, conn, tenant, "A", nil)
	retired := dbtest.MustCreateVehicle(t, conn, tenant, "C", nil)
	require.NoError(t, conn.Model(retired).Update("is_active", false).Error)

	rows, err := repo.ListActive(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Name)
	assert.Equal(t, "B", rows[1].Name)

	txRows, err := repo.ListActiveWithTx(conn, tenant)
	require.NoError(t, err)
	assert.Len(t, txRows, 2)

	_, err = repo.ListActiveWithTx(nil, tenant)
	assert.ErrorIs(t, err, gorm.ErrInvalidTransaction)
}
