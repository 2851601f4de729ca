package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type testDish struct {
	ID       string  `gorm:"primaryKey"`
	TenantID *string `gorm:"size:64"`
	Name     string
}

func (testDish) TableName() string {
	return "test_dishes"
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestApply(t *testing.T) {
	t.Run("restricted scope filters by tenant", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "test_dishes" WHERE tenant_id = \$1`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []testDish
		err := db.Scopes(Apply(access.Scope{Restricted: true, TenantID: "p1"})).Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unrestricted scope adds nothing", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "test_dishes"$`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []testDish
		require.NoError(t, db.Scopes(Apply(access.Unrestricted)).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("combines with other conditions on updates", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "test_dishes" SET "name"=\$1 WHERE id = \$2 AND tenant_id = \$3`).
			WithArgs("Soup", "d1", "p2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := db.Model(&testDish{}).
			Where("id = ?", "d1").
			Scopes(Apply(access.Scope{Restricted: true, TenantID: "p2"})).
			Update("name", "Soup").Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restricted scope without tenant fails closed", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var rows []testDish
		err := db.Scopes(Apply(access.Scope{Restricted: true})).Find(&rows).Error
		assert.ErrorIs(t, err, ErrEmptyRestrictedScope)
	})
}
