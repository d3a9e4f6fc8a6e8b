package repositories_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/stretchr/testify/require"
)

func TestPostgresReminderRepository_TryMarkSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repositories.NewPostgresReminderRepository(db)

	// Первый вызов вставляет строку и выигрывает.
	mock.ExpectExec(`INSERT INTO match_reminders`).
		WithArgs("match-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sent, err := repo.TryMarkSent(context.Background(), "match-1")
	require.NoError(t, err)
	require.True(t, sent)

	// Повторный вызов попадает в ON CONFLICT DO NOTHING.
	mock.ExpectExec(`INSERT INTO match_reminders`).
		WithArgs("match-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	sent, err = repo.TryMarkSent(context.Background(), "match-1")
	require.NoError(t, err)
	require.False(t, sent)

	require.NoError(t, mock.ExpectationsWereMet())
}
