package repositories

import (
	"context"
	"testing"

	"fieldops/internal/apperrors"
	"fieldops/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return database.DB{SQL: gormDB}, mock
}

func TestResourceRepository_LockForShiftOpen_LockOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResourceRepository(db)

	// Expectations are ordered: vehicle first, then team, then workers
	// in one query with the ids sorted ascending even though the
	// request listed them as [22, 21].
	mock.ExpectQuery(`SELECT (.+) FROM "vehicles" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT (.+) FROM "teams" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM "workers" (.+)id IN (.+)ORDER BY id ASC(.+)FOR UPDATE`).
		WithArgs(21, 22).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21).AddRow(22))

	err := repo.LockForShiftOpen(context.Background(), db.SQL, 7, 3, []int{22, 21})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepository_LockForShiftOpen_MissingVehicle(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResourceRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "vehicles" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.LockForShiftOpen(context.Background(), db.SQL, 7, 3, []int{21})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "vehicle 7")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepository_LockForShiftOpen_MissingWorkerIsNamed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResourceRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "vehicles" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT (.+) FROM "teams" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM "workers" (.+)FOR UPDATE`).
		WithArgs(21, 22).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	err := repo.LockForShiftOpen(context.Background(), db.SQL, 7, 3, []int{22, 21})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "worker 22")
	assert.NoError(t, mock.ExpectationsWereMet())
}
