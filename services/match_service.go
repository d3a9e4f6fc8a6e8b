package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TeamLinkup/matchmaking-system/live"
	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// Минимальный запас времени до начала матча, при котором отмена еще разрешена.
	cancellationWindow = 48 * time.Hour

	// Напоминание уходит, когда до матча осталось не больше суток.
	reminderWindow = 24 * time.Hour

	// Название команды соперника в матче, если принимающая сторона
	// еще не зарегистрировала команду.
	fallbackTeamName = "Opponent Team"
)

type MatchService interface {
	// AcceptOffer атомарно принимает открытое предложение: перевод статуса
	// (CAS OPEN -> ACCEPTED) и создание подтвержденного матча выполняются в
	// одной транзакции, поэтому два пользователя не могут принять одно
	// предложение. Обе стороны получают письма с подтверждением.
	AcceptOffer(ctx context.Context, offerID, acceptingUserID string) (*models.ConfirmedMatch, error)

	// GetConfirmedMatchesForUser возвращает CONFIRMED-матчи пользователя
	// по возрастанию времени начала.
	GetConfirmedMatchesForUser(ctx context.Context, userID string) ([]*models.ConfirmedMatch, error)

	// GetCancelledMatchesForUser возвращает CANCELLED-матчи пользователя.
	GetCancelledMatchesForUser(ctx context.Context, userID string) ([]*models.ConfirmedMatch, error)

	// CancelMatch отменяет подтвержденный матч. Разрешено любой из сторон,
	// но не позже чем за 48 часов до начала. Противоположная сторона
	// уведомляется письмом.
	CancelMatch(ctx context.Context, matchID, cancellingUserID string) error

	// CheckAndSendReminders — свип по CONFIRMED-матчам: для каждого матча,
	// до которого осталось от 0 до 24 часов, один раз отправляет
	// напоминания обеим сторонам. Повторные запуски безопасны.
	CheckAndSendReminders(ctx context.Context) error
}

type matchService struct {
	db           *sql.DB
	offerRepo    repositories.OfferRepository
	matchRepo    repositories.MatchRepository
	teamRepo     repositories.TeamRepository
	userRepo     repositories.UserRepository
	reminderRepo repositories.ReminderRepository
	notifier     Notifier
	hub          *live.Hub
	logger       *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	offerRepo repositories.OfferRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	reminderRepo repositories.ReminderRepository,
	notifier Notifier,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:           db,
		offerRepo:    offerRepo,
		matchRepo:    matchRepo,
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		reminderRepo: reminderRepo,
		notifier:     notifier,
		hub:          hub,
		logger:       logger,
	}
}

func (s *matchService) AcceptOffer(ctx context.Context, offerID, acceptingUserID string) (*models.ConfirmedMatch, error) {
	// 1. Загружаем предложение и проверяем предусловия до открытия транзакции.
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repositories.ErrOfferNotFound) {
			return nil, ErrOfferNotOpen
		}
		return nil, fmt.Errorf("failed to get offer %s: %w", offerID, err)
	}
	if offer.Status != models.OfferStatusOpen {
		return nil, ErrOfferNotOpen
	}
	if offer.CreatorID == acceptingUserID {
		return nil, ErrOwnOfferAccept
	}

	acceptingUser, err := s.userRepo.GetByID(ctx, acceptingUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get accepting user %s: %w", acceptingUserID, err)
	}

	// 2. Название принимающей команды — снапшот на момент принятия.
	acceptingTeamName := fallbackTeamName
	team, err := s.teamRepo.GetByInscriber(ctx, acceptingUserID)
	switch {
	case err == nil:
		acceptingTeamName = team.Name
	case errors.Is(err, repositories.ErrTeamNotFound):
		// Оставляем запасное название.
	default:
		return nil, fmt.Errorf("failed to get accepting team: %w", err)
	}

	matchDateTime, err := offer.StartTime()
	if err != nil {
		return nil, fmt.Errorf("%w: offer %s", ErrAvailabilityInvalid, offerID)
	}

	match := &models.ConfirmedMatch{
		ID:                      uuid.NewString(),
		OfferID:                 offer.ID,
		ProposingInscriberID:    offer.CreatorID,
		ProposingInscriberEmail: offer.CreatorEmail,
		ProposingTeamName:       offer.TeamName,
		AcceptingInscriberID:    acceptingUser.ID,
		AcceptingInscriberEmail: acceptingUser.Email,
		AcceptingTeamName:       acceptingTeamName,
		Sport:                   offer.Sport,
		NumPlayers:              offer.NumPlayers,
		SkillLevel:              offer.SkillLevel,
		MatchDateTime:           matchDateTime,
		VenueName:               offer.VenueName,
		VenueAddress:            offer.VenueAddress,
		VenuePhone:              offer.VenuePhone,
		VenueDetails:            offer.VenueDetails,
		Status:                  models.MatchStatusConfirmed,
	}

	// 3. Перевод статуса и создание матча — одна транзакция. CAS по статусу
	// закрывает гонку двух одновременных принятий: проигравший получает
	// ErrOfferNotOpen, а не перезаписывает чужой результат.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback()

	err = s.offerRepo.UpdateStatus(ctx, tx, offer.ID, models.OfferStatusOpen, models.OfferStatusAccepted)
	if err != nil {
		if errors.Is(err, repositories.ErrOfferStatusConflict) || errors.Is(err, repositories.ErrOfferNotFound) {
			return nil, ErrOfferNotOpen
		}
		return nil, fmt.Errorf("failed to accept offer %s: %w", offer.ID, err)
	}

	if err := s.matchRepo.Create(ctx, tx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchOfferTaken) {
			return nil, ErrOfferNotOpen
		}
		return nil, fmt.Errorf("failed to create confirmed match for offer %s: %w", offer.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit accept transaction: %w", err)
	}

	// 4. Уведомления после коммита: их сбой не откатывает принятие.
	s.notify(ctx, "match confirmation", match.ProposingInscriberEmail, func(ctx context.Context) error {
		return s.notifier.SendMatchConfirmationEmail(ctx, match.ProposingInscriberEmail, match, true)
	})
	s.notify(ctx, "match confirmation", match.AcceptingInscriberEmail, func(ctx context.Context) error {
		return s.notifier.SendMatchConfirmationEmail(ctx, match.AcceptingInscriberEmail, match, false)
	})

	s.hub.BroadcastToRoom(string(match.Sport), live.Event{
		Type:    live.EventOfferAccepted,
		Payload: match,
	})

	return match, nil
}

func (s *matchService) GetConfirmedMatchesForUser(ctx context.Context, userID string) ([]*models.ConfirmedMatch, error) {
	matches, err := s.matchRepo.ListForUser(ctx, userID, models.MatchStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed matches for user %s: %w", userID, err)
	}
	return matches, nil
}

func (s *matchService) GetCancelledMatchesForUser(ctx context.Context, userID string) ([]*models.ConfirmedMatch, error) {
	matches, err := s.matchRepo.ListForUser(ctx, userID, models.MatchStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancelled matches for user %s: %w", userID, err)
	}
	return matches, nil
}

func (s *matchService) CancelMatch(ctx context.Context, matchID, cancellingUserID string) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %s: %w", matchID, err)
	}

	if match.Status != models.MatchStatusConfirmed {
		return ErrMatchNotConfirmed
	}
	if !match.IsParty(cancellingUserID) {
		return ErrMatchCancellationForbidden
	}

	// Политика 48 часов действует для обеих сторон без исключений.
	if time.Until(match.MatchDateTime) < cancellationWindow {
		return ErrMatchCancellationTooLate
	}

	err = s.matchRepo.UpdateStatus(ctx, s.db, matchID, models.MatchStatusConfirmed, models.MatchStatusCancelled)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchStatusConflict) {
			return ErrMatchNotConfirmed
		}
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to cancel match %s: %w", matchID, err)
	}
	match.Status = models.MatchStatusCancelled

	// Уведомляется только сторона, не инициировавшая отмену.
	opponentEmail := match.OpponentEmail(cancellingUserID)
	s.notify(ctx, "match cancellation", opponentEmail, func(ctx context.Context) error {
		return s.notifier.SendMatchCancellationEmail(ctx, opponentEmail, match)
	})

	s.hub.BroadcastToRoom(string(match.Sport), live.Event{
		Type:    live.EventMatchCancelled,
		Payload: match,
	})

	return nil
}

func (s *matchService) CheckAndSendReminders(ctx context.Context) error {
	matches, err := s.matchRepo.ListByStatus(ctx, models.MatchStatusConfirmed)
	if err != nil {
		return fmt.Errorf("failed to list confirmed matches for reminders: %w", err)
	}

	now := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var flagErrs []error
	for _, match := range matches {
		until := match.MatchDateTime.Sub(now)
		if until <= 0 || until > reminderWindow {
			continue
		}

		// Флаг ставится до отправки: лучше потерять напоминание при падении
		// процесса, чем отправить его дважды.
		sent, err := s.reminderRepo.TryMarkSent(ctx, match.ID)
		if err != nil {
			// Сбой флага одного матча не прерывает свип остальных.
			flagErrs = append(flagErrs, fmt.Errorf("failed to mark reminder for match %s: %w", match.ID, err))
			continue
		}
		if !sent {
			continue
		}

		match := match
		g.Go(func() error {
			s.notify(gCtx, "match reminder", match.ProposingInscriberEmail, func(ctx context.Context) error {
				return s.notifier.SendMatchReminderEmail(ctx, match.ProposingInscriberEmail, match)
			})
			s.notify(gCtx, "match reminder", match.AcceptingInscriberEmail, func(ctx context.Context) error {
				return s.notifier.SendMatchReminderEmail(ctx, match.AcceptingInscriberEmail, match)
			})
			s.logger.Info("reminder sent", slog.String("match_id", match.ID))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		flagErrs = append(flagErrs, err)
	}
	return errors.Join(flagErrs...)
}

// notify вызывает коллаборатора уведомлений и логирует сбой, не прерывая операцию.
func (s *matchService) notify(ctx context.Context, kind, recipient string, send func(context.Context) error) {
	if err := send(ctx); err != nil {
		s.logger.Error("failed to send notification",
			slog.String("kind", kind),
			slog.String("recipient", recipient),
			slog.Any("error", err),
		)
	}
}
