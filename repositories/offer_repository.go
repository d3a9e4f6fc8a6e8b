package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/lib/pq"
)

var (
	ErrOfferNotFound       = errors.New("match offer not found")
	ErrOfferCreatorInvalid = errors.New("match offer creator conflict or invalid")

	// ErrOfferStatusConflict возвращается, когда condition-переход статуса
	// не нашел строку в ожидаемом статусе (проигранный CAS).
	ErrOfferStatusConflict = errors.New("match offer is not in the expected status")
)

// OfferSearchFilter — необязательные критерии поиска. nil-поле означает
// отсутствие фильтра по этому признаку.
type OfferSearchFilter struct {
	Sport      *models.Sport
	SkillLevel *models.SkillLevel
	Date       *string // YYYY-MM-DD, точное совпадение
	NumPlayers *int
}

type OfferRepository interface {
	Create(ctx context.Context, offer *models.MatchOffer) error
	GetByID(ctx context.Context, id string) (*models.MatchOffer, error)

	// ListByCreator возвращает все предложения инскрайбера,
	// отсортированные по дате проведения по убыванию.
	ListByCreator(ctx context.Context, creatorID string) ([]*models.MatchOffer, error)

	// Search возвращает открытые предложения чужих команд по фильтру,
	// отсортированные по дате проведения по возрастанию. Просроченные
	// открытые предложения НЕ исключаются: "expired" — расчетный статус.
	Search(ctx context.Context, filter OfferSearchFilter, excludeCreatorID string) ([]*models.MatchOffer, error)

	// UpdateStatus атомарно переводит предложение из статуса from в to
	// (compare-and-swap). Если предложение существует, но уже не в статусе
	// from, возвращает ErrOfferStatusConflict.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.OfferStatus) error
}

type postgresOfferRepository struct {
	db *sql.DB
}

func NewPostgresOfferRepository(db *sql.DB) OfferRepository {
	return &postgresOfferRepository{db: db}
}

const offerColumns = `id, creator_id, creator_email, team_name, sport, num_players, skill_level,
	       availability_date, availability_time, venue_name, venue_address, venue_phone, venue_details,
	       status, created_at`

func (r *postgresOfferRepository) Create(ctx context.Context, offer *models.MatchOffer) error {
	query := `
		INSERT INTO match_offers
			(id, creator_id, creator_email, team_name, sport, num_players, skill_level,
			 availability_date, availability_time, venue_name, venue_address, venue_phone, venue_details, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		offer.ID,
		offer.CreatorID,
		offer.CreatorEmail,
		offer.TeamName,
		offer.Sport,
		offer.NumPlayers,
		offer.SkillLevel,
		offer.AvailabilityDate,
		offer.AvailabilityTime,
		offer.VenueName,
		offer.VenueAddress,
		offer.VenuePhone,
		offer.VenueDetails,
		offer.Status,
	).Scan(&offer.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "match_offers_creator_id_fkey" { // foreign_key_violation
				return ErrOfferCreatorInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresOfferRepository) GetByID(ctx context.Context, id string) (*models.MatchOffer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM match_offers
		WHERE id = $1`

	offer := &models.MatchOffer{}
	err := scanOffer(r.db.QueryRowContext(ctx, query, id), offer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to scan match offer %s: %w", id, err)
	}
	return offer, nil
}

func (r *postgresOfferRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.MatchOffer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM match_offers
		WHERE creator_id = $1
		ORDER BY availability_date DESC, availability_time DESC`

	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOffers(rows)
}

func (r *postgresOfferRepository) Search(ctx context.Context, filter OfferSearchFilter, excludeCreatorID string) ([]*models.MatchOffer, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT ` + offerColumns + `
		FROM match_offers
		WHERE status = $1 AND creator_id <> $2`)

	args := []interface{}{models.OfferStatusOpen, excludeCreatorID}
	argPos := 3

	appendFilter := func(column string, value interface{}) {
		queryBuilder.WriteString(" AND " + column + " = $" + strconv.Itoa(argPos))
		args = append(args, value)
		argPos++
	}

	if filter.Sport != nil {
		appendFilter("sport", *filter.Sport)
	}
	if filter.SkillLevel != nil {
		appendFilter("skill_level", *filter.SkillLevel)
	}
	if filter.Date != nil {
		appendFilter("availability_date", *filter.Date)
	}
	if filter.NumPlayers != nil {
		appendFilter("num_players", *filter.NumPlayers)
	}

	queryBuilder.WriteString(" ORDER BY availability_date ASC, availability_time ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOffers(rows)
}

func (r *postgresOfferRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.OfferStatus) error {
	// CAS по статусу: строка обновляется только если она все еще в статусе from.
	query := `
		UPDATE match_offers
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
		// Различаем "нет такого предложения" и "предложение уже в другом статусе".
		var exists bool
		if checkErr := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM match_offers WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return checkErr
		}
		if !exists {
			return ErrOfferNotFound
		}
		return ErrOfferStatusConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner, offer *models.MatchOffer) error {
	return row.Scan(
		&offer.ID,
		&offer.CreatorID,
		&offer.CreatorEmail,
		&offer.TeamName,
		&offer.Sport,
		&offer.NumPlayers,
		&offer.SkillLevel,
		&offer.AvailabilityDate,
		&offer.AvailabilityTime,
		&offer.VenueName,
		&offer.VenueAddress,
		&offer.VenuePhone,
		&offer.VenueDetails,
		&offer.Status,
		&offer.CreatedAt,
	)
}

func collectOffers(rows *sql.Rows) ([]*models.MatchOffer, error) {
	offers := make([]*models.MatchOffer, 0)
	for rows.Next() {
		var offer models.MatchOffer
		if err := scanOffer(rows, &offer); err != nil {
			return nil, err
		}
		offers = append(offers, &offer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offers, nil
}
