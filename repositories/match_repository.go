package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("confirmed match not found")
	ErrMatchOfferInvalid = errors.New("confirmed match offer conflict or invalid")

	// ErrMatchOfferTaken — по offer_id уже создан матч (unique по offer_id):
	// одно предложение порождает не более одного матча.
	ErrMatchOfferTaken = errors.New("confirmed match already exists for this offer")

	ErrMatchStatusConflict = errors.New("confirmed match is not in the expected status")
)

type MatchRepository interface {
	// Create добавляет подтвержденный матч. Матчи никогда не удаляются,
	// коллекция служит постоянной историей.
	Create(ctx context.Context, exec SQLExecutor, match *models.ConfirmedMatch) error

	GetByID(ctx context.Context, id string) (*models.ConfirmedMatch, error)

	// ListForUser возвращает матчи, где пользователь — любая из сторон,
	// в указанном статусе, по возрастанию времени начала.
	ListForUser(ctx context.Context, userID string, status models.MatchStatus) ([]*models.ConfirmedMatch, error)

	// ListByStatus возвращает все матчи в статусе (для свипа напоминаний).
	ListByStatus(ctx context.Context, status models.MatchStatus) ([]*models.ConfirmedMatch, error)

	// UpdateStatus — CAS-переход статуса, как у предложений.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, offer_id,
	       proposing_inscriber_id, proposing_inscriber_email, proposing_team_name,
	       accepting_inscriber_id, accepting_inscriber_email, accepting_team_name,
	       sport, num_players, skill_level, match_datetime,
	       venue_name, venue_address, venue_phone, venue_details,
	       status, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.ConfirmedMatch) error {
	query := `
		INSERT INTO confirmed_matches
			(id, offer_id,
			 proposing_inscriber_id, proposing_inscriber_email, proposing_team_name,
			 accepting_inscriber_id, accepting_inscriber_email, accepting_team_name,
			 sport, num_players, skill_level, match_datetime,
			 venue_name, venue_address, venue_phone, venue_details, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		match.ID,
		match.OfferID,
		match.ProposingInscriberID,
		match.ProposingInscriberEmail,
		match.ProposingTeamName,
		match.AcceptingInscriberID,
		match.AcceptingInscriberEmail,
		match.AcceptingTeamName,
		match.Sport,
		match.NumPlayers,
		match.SkillLevel,
		match.MatchDateTime,
		match.VenueName,
		match.VenueAddress,
		match.VenuePhone,
		match.VenueDetails,
		match.Status,
	).Scan(&match.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "confirmed_matches_offer_id_key" {
					return ErrMatchOfferTaken
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "confirmed_matches_offer_id_fkey" {
					return ErrMatchOfferInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.ConfirmedMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM confirmed_matches
		WHERE id = $1`

	match := &models.ConfirmedMatch{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan confirmed match %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListForUser(ctx context.Context, userID string, status models.MatchStatus) ([]*models.ConfirmedMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM confirmed_matches
		WHERE (proposing_inscriber_id = $1 OR accepting_inscriber_id = $1) AND status = $2
		ORDER BY match_datetime ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByStatus(ctx context.Context, status models.MatchStatus) ([]*models.ConfirmedMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM confirmed_matches
		WHERE status = $1
		ORDER BY match_datetime ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.MatchStatus) error {
	query := `
		UPDATE confirmed_matches
		SET status = $1
		WHERE id = $2 AND status = $3`

	result, err := exec.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists bool
		if checkErr := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM confirmed_matches WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return checkErr
		}
		if !exists {
			return ErrMatchNotFound
		}
		return ErrMatchStatusConflict
	}
	return nil
}

func scanMatch(row rowScanner, match *models.ConfirmedMatch) error {
	return row.Scan(
		&match.ID,
		&match.OfferID,
		&match.ProposingInscriberID,
		&match.ProposingInscriberEmail,
		&match.ProposingTeamName,
		&match.AcceptingInscriberID,
		&match.AcceptingInscriberEmail,
		&match.AcceptingTeamName,
		&match.Sport,
		&match.NumPlayers,
		&match.SkillLevel,
		&match.MatchDateTime,
		&match.VenueName,
		&match.VenueAddress,
		&match.VenuePhone,
		&match.VenueDetails,
		&match.Status,
		&match.CreatedAt,
	)
}

func collectMatches(rows *sql.Rows) ([]*models.ConfirmedMatch, error) {
	matches := make([]*models.ConfirmedMatch, 0)
	for rows.Next() {
		var match models.ConfirmedMatch
		if err := scanMatch(rows, &match); err != nil {
			return nil, err
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
