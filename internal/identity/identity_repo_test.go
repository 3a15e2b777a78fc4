package identity_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-payops/internal/identity"
)

// Binding a transaction must route every statement through it. The pool
// connection stays untouched, so a failing sync rolls back every mapping it
// already wrote.
func TestIdentityRepository_WithTxRoutesThroughTransaction(t *testing.T) {
	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{})
	assert.NoError(t, err)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	txMock.ExpectExec(`INSERT INTO "payroll_identity_mappings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectCommit()

	tx, err := txDB.Begin()
	assert.NoError(t, err)

	userID := uuid.New()
	repo := identity.NewRepository(gdb).WithTx(tx)
	err = repo.Upsert(context.Background(), &identity.PayrollIdentityMapping{
		ID:             uuid.New(),
		NormalizedName: "j doe",
		UserID:         &userID,
		Status:         identity.MappingResolved,
	})

	assert.NoError(t, err)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
