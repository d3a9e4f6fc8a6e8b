package models

import "time"

type Sport string

const (
	SportFootball   Sport = "Football"
	SportBasketball Sport = "Basketball"
	SportVolleyball Sport = "Volleyball"
	SportPadel      Sport = "Padel"
)

func (s Sport) Valid() bool {
	switch s {
	case SportFootball, SportBasketball, SportVolleyball, SportPadel:
		return true
	}
	return false
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
)

func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

type OfferStatus string

const (
	OfferStatusOpen               OfferStatus = "OPEN"
	OfferStatusAccepted           OfferStatus = "ACCEPTED"
	OfferStatusCancelledByCreator OfferStatus = "CANCELLED_BY_CREATOR"

	// OfferStatusExpired — расчетный статус для отображения, никогда не пишется в БД.
	OfferStatusExpired OfferStatus = "EXPIRED"
)

type MatchOffer struct {
	ID               string      `json:"id"`
	CreatorID        string      `json:"creator_id"`
	CreatorEmail     string      `json:"creator_email"` // снапшот на момент создания
	TeamName         string      `json:"team_name"`     // снапшот на момент создания
	Sport            Sport       `json:"sport"`
	NumPlayers       int         `json:"num_players"`
	SkillLevel       SkillLevel  `json:"skill_level"`
	AvailabilityDate string      `json:"availability_date"` // YYYY-MM-DD
	AvailabilityTime string      `json:"availability_time"` // HH:MM
	VenueName        string      `json:"venue_name"`
	VenueAddress     string      `json:"venue_address"`
	VenuePhone       *string     `json:"venue_phone,omitempty"`
	VenueDetails     *string     `json:"venue_details,omitempty"`
	Status           OfferStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}

const offerTimeLayout = "2006-01-02 15:04"

// StartTime собирает дату и время предложения в абсолютный момент времени.
func (o *MatchOffer) StartTime() (time.Time, error) {
	return time.ParseInLocation(offerTimeLayout, o.AvailabilityDate+" "+o.AvailabilityTime, time.Local)
}

// DisplayStatus возвращает EXPIRED для открытых предложений, чье время уже прошло.
// В хранилище такие предложения остаются OPEN.
func (o *MatchOffer) DisplayStatus(now time.Time) OfferStatus {
	if o.Status != OfferStatusOpen {
		return o.Status
	}
	start, err := o.StartTime()
	if err == nil && start.Before(now) {
		return OfferStatusExpired
	}
	return o.Status
}
