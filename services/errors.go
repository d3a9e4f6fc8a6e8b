package services

import "errors"

// Общие ошибки сервисного слоя, используемые в маппинге HTTP.
var (
	// Ресурс не найден
	ErrUserNotFound  = errors.New("user not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrOfferNotFound = errors.New("match offer not found")
	ErrMatchNotFound = errors.New("match not found")

	// Ошибки валидации
	ErrValidationFailed    = errors.New("validation failed")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrPlayerNameRequired  = errors.New("player name is required")
	ErrPlayerAgeInvalid    = errors.New("player age must be a positive integer")
	ErrSportInvalid        = errors.New("unknown sport")
	ErrSkillLevelInvalid   = errors.New("unknown skill level")
	ErrNumPlayersInvalid   = errors.New("number of players must be positive")
	ErrAvailabilityInvalid = errors.New("availability date/time is malformed")
	ErrAvailabilityInPast  = errors.New("match date and time must be in the future")
	ErrVenueRequired       = errors.New("venue name and address are required")
	ErrTeamRequired        = errors.New("a team must be registered before posting or accepting offers")
	ErrTeamEmpty           = errors.New("team has no players")

	// Нарушения бизнес-правил и состояний
	ErrOfferNotOpen               = errors.New("offer not found or no longer open")
	ErrOwnOfferAccept             = errors.New("cannot accept your own offer")
	ErrMatchNotConfirmed          = errors.New("match is not currently confirmed")
	ErrMatchCancellationForbidden = errors.New("you are not part of this match")
	ErrMatchCancellationTooLate   = errors.New("match cannot be cancelled less than 48 hours before its scheduled time")

	// Конфликты
	ErrAuthEmailTaken = errors.New("user with this email already exists")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
)
