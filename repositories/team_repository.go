package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrTeamInscriberInvalid = errors.New("team inscriber conflict or invalid")
)

type TeamRepository interface {
	// GetByInscriber возвращает команду инскрайбера. У инскрайбера не может
	// быть больше одной команды (unique по inscriber_id).
	GetByInscriber(ctx context.Context, inscriberID string) (*models.Team, error)

	// Upsert создает команду либо полностью заменяет name/players существующей,
	// сохраняя ее id. Заполняет ID, CreatedAt, UpdatedAt переданного объекта.
	Upsert(ctx context.Context, team *models.Team) error

	// UpdateLogoKey сохраняет ключ загруженного логотипа.
	UpdateLogoKey(ctx context.Context, teamID string, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByInscriber(ctx context.Context, inscriberID string) (*models.Team, error) {
	query := `
		SELECT id, inscriber_id, name, players, logo_key, created_at, updated_at
		FROM teams
		WHERE inscriber_id = $1`

	team := &models.Team{}
	var playersJSON []byte
	err := r.db.QueryRowContext(ctx, query, inscriberID).Scan(
		&team.ID,
		&team.InscriberID,
		&team.Name,
		&playersJSON,
		&team.LogoKey,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team for inscriber %s: %w", inscriberID, err)
	}

	if err := json.Unmarshal(playersJSON, &team.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players of team %s: %w", team.ID, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	playersJSON, err := json.Marshal(team.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}

	// ON CONFLICT по inscriber_id: существующая строка сохраняет свой id,
	// name и players заменяются целиком.
	query := `
		INSERT INTO teams (id, inscriber_id, name, players)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (inscriber_id) DO UPDATE
			SET name = EXCLUDED.name,
			    players = EXCLUDED.players,
			    updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		team.ID,
		team.InscriberID,
		team.Name,
		playersJSON,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "teams_inscriber_id_fkey" { // foreign_key_violation
				return ErrTeamInscriberInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID string, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}
