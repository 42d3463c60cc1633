package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/starbot-tg/starbot/internal/db"
	domainErrors "github.com/starbot-tg/starbot/internal/errors"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	fixed := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	return &Client{
		db:              sqlx.NewDb(conn, "pgx"),
		dialect:         DialectPostgres,
		defaultLanguage: db.DefaultLanguage,
		now:             func() time.Time { return fixed },
	}, mock
}

func TestTransferRollsBackWhenCreditFails(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE users SET stars = stars \+ \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO star_transactions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT stars FROM users").WillReturnRows(sqlmock.NewRows([]string{"stars"}).AddRow(70))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET stars").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := client.Transfer(context.Background(), testChat, 1, 2, 30, db.TxTransfer)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddStarsInsufficientFundsRollsBack(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE users SET stars").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := client.AddStars(context.Background(), testChat, 1, -50, db.TxGame, "")
	require.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}
