package repositories

import (
	"context"
	"database/sql"
)

// ReminderRepository хранит долговечный флаг "напоминание уже отправлено"
// по каждому матчу. Флаг гарантирует не более одного напоминания на матч,
// в том числе при повторных запусках свипа.
type ReminderRepository interface {
	// TryMarkSent ставит флаг для матча. Возвращает true, если флаг поставлен
	// этим вызовом, и false, если напоминание уже было отмечено ранее.
	TryMarkSent(ctx context.Context, matchID string) (bool, error)
}

type postgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) ReminderRepository {
	return &postgresReminderRepository{db: db}
}

func (r *postgresReminderRepository) TryMarkSent(ctx context.Context, matchID string) (bool, error) {
	// ON CONFLICT DO NOTHING: второй и последующие вызовы не затрагивают строк.
	query := `
		INSERT INTO match_reminders (match_id)
		VALUES ($1)
		ON CONFLICT (match_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, matchID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}
