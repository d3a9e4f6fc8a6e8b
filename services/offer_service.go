package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TeamLinkup/matchmaking-system/live"
	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/google/uuid"
)

type OfferService interface {
	// CreateOffer публикует предложение от имени инскрайбера. Требует
	// зарегистрированную непустую команду; email и название команды
	// снапшотятся на момент создания.
	CreateOffer(ctx context.Context, input CreateOfferInput) (*models.MatchOffer, error)

	// GetMyOffers возвращает предложения инскрайбера, новые даты сверху.
	GetMyOffers(ctx context.Context, creatorID string) ([]*models.MatchOffer, error)

	// SearchOffers возвращает чужие открытые предложения по фильтру,
	// ближайшие даты сверху.
	SearchOffers(ctx context.Context, filter repositories.OfferSearchFilter, currentUserID string) ([]*models.MatchOffer, error)

	// CancelOffer переводит OPEN-предложение создателя в CANCELLED_BY_CREATOR.
	CancelOffer(ctx context.Context, offerID, creatorID string) error
}

type CreateOfferInput struct {
	CreatorID        string            `json:"-"`
	Sport            models.Sport      `json:"sport"`
	NumPlayers       int               `json:"num_players"`
	SkillLevel       models.SkillLevel `json:"skill_level"`
	AvailabilityDate string            `json:"availability_date"`
	AvailabilityTime string            `json:"availability_time"`
	VenueName        string            `json:"venue_name"`
	VenueAddress     string            `json:"venue_address"`
	VenuePhone       *string           `json:"venue_phone,omitempty"`
	VenueDetails     *string           `json:"venue_details,omitempty"`
}

type offerService struct {
	db        *sql.DB
	offerRepo repositories.OfferRepository
	teamRepo  repositories.TeamRepository
	userRepo  repositories.UserRepository
	hub       *live.Hub
}

func NewOfferService(
	db *sql.DB,
	offerRepo repositories.OfferRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	hub *live.Hub,
) OfferService {
	return &offerService{
		db:        db,
		offerRepo: offerRepo,
		teamRepo:  teamRepo,
		userRepo:  userRepo,
		hub:       hub,
	}
}

func (s *offerService) CreateOffer(ctx context.Context, input CreateOfferInput) (*models.MatchOffer, error) {
	if err := validateOfferInput(input); err != nil {
		return nil, err
	}

	creator, err := s.userRepo.GetByID(ctx, input.CreatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get creator %s: %w", input.CreatorID, err)
	}

	team, err := s.teamRepo.GetByInscriber(ctx, input.CreatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamRequired
		}
		return nil, fmt.Errorf("failed to get creator team: %w", err)
	}
	if len(team.Players) == 0 {
		return nil, ErrTeamEmpty
	}

	offer := &models.MatchOffer{
		ID:               uuid.NewString(),
		CreatorID:        creator.ID,
		CreatorEmail:     creator.Email, // снапшот: не обновляется при смене данных
		TeamName:         team.Name,     // снапшот: не обновляется при переименовании команды
		Sport:            input.Sport,
		NumPlayers:       input.NumPlayers,
		SkillLevel:       input.SkillLevel,
		AvailabilityDate: input.AvailabilityDate,
		AvailabilityTime: input.AvailabilityTime,
		VenueName:        strings.TrimSpace(input.VenueName),
		VenueAddress:     strings.TrimSpace(input.VenueAddress),
		VenuePhone:       input.VenuePhone,
		VenueDetails:     input.VenueDetails,
		Status:           models.OfferStatusOpen,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create match offer: %w", err)
	}

	s.hub.BroadcastToRoom(string(offer.Sport), live.Event{
		Type:    live.EventOfferCreated,
		Payload: offer,
	})

	return offer, nil
}

func (s *offerService) GetMyOffers(ctx context.Context, creatorID string) ([]*models.MatchOffer, error) {
	offers, err := s.offerRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers for creator %s: %w", creatorID, err)
	}
	return offers, nil
}

func (s *offerService) SearchOffers(ctx context.Context, filter repositories.OfferSearchFilter, currentUserID string) ([]*models.MatchOffer, error) {
	if filter.Sport != nil && !filter.Sport.Valid() {
		return nil, ErrSportInvalid
	}
	if filter.SkillLevel != nil && !filter.SkillLevel.Valid() {
		return nil, ErrSkillLevelInvalid
	}

	offers, err := s.offerRepo.Search(ctx, filter, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to search offers: %w", err)
	}
	return offers, nil
}

func (s *offerService) CancelOffer(ctx context.Context, offerID, creatorID string) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repositories.ErrOfferNotFound) {
			return ErrOfferNotFound
		}
		return fmt.Errorf("failed to get offer %s: %w", offerID, err)
	}

	// Чужое предложение неотличимо от несуществующего.
	if offer.CreatorID != creatorID {
		return ErrOfferNotFound
	}
	if offer.Status != models.OfferStatusOpen {
		return ErrOfferNotOpen
	}

	err = s.offerRepo.UpdateStatus(ctx, s.db, offerID, models.OfferStatusOpen, models.OfferStatusCancelledByCreator)
	if err != nil {
		if errors.Is(err, repositories.ErrOfferStatusConflict) {
			// Кто-то успел принять предложение между проверкой и записью.
			return ErrOfferNotOpen
		}
		if errors.Is(err, repositories.ErrOfferNotFound) {
			return ErrOfferNotFound
		}
		return fmt.Errorf("failed to cancel offer %s: %w", offerID, err)
	}

	offer.Status = models.OfferStatusCancelledByCreator
	s.hub.BroadcastToRoom(string(offer.Sport), live.Event{
		Type:    live.EventOfferCancelled,
		Payload: offer,
	})

	return nil
}

func validateOfferInput(input CreateOfferInput) error {
	if !input.Sport.Valid() {
		return ErrSportInvalid
	}
	if !input.SkillLevel.Valid() {
		return ErrSkillLevelInvalid
	}
	if input.NumPlayers <= 0 {
		return ErrNumPlayersInvalid
	}
	if strings.TrimSpace(input.VenueName) == "" || strings.TrimSpace(input.VenueAddress) == "" {
		return ErrVenueRequired
	}
	if _, err := time.Parse("2006-01-02", input.AvailabilityDate); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrAvailabilityInvalid)
	}
	if _, err := time.Parse("15:04", input.AvailabilityTime); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrAvailabilityInvalid)
	}

	// Предложение на прошедший момент времени не публикуется.
	start, err := time.ParseInLocation("2006-01-02 15:04", input.AvailabilityDate+" "+input.AvailabilityTime, time.Local)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAvailabilityInvalid, err)
	}
	if !start.After(time.Now()) {
		return ErrAvailabilityInPast
	}
	return nil
}
