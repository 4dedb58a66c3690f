package contact

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/georgemunganga/promoled-directory/internal/modules/directory"
)

// requestDateLayout matches the French short date and time, 14/03/2026 09:30.
const requestDateLayout = "02/01/2006 15:04"

// ProviderLookup finds the electrician a request is addressed to.
type ProviderLookup interface {
	GetProvider(id string) (*directory.Provider, error)
}

type Service interface {
	Send(ctx context.Context, req Request) (*Payload, error)
}

type service struct {
	providers ProviderLookup
	publisher Publisher
	log       *zap.SugaredLogger
	now       func() time.Time
	location  *time.Location
}

func NewService(providers ProviderLookup, publisher Publisher, log *zap.SugaredLogger) Service {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		log.Warnw("Europe/Paris time zone unavailable, using local time", "error", err)
		loc = time.Local
	}
	return &service{providers: providers, publisher: publisher, log: log, now: time.Now, location: loc}
}

// Send builds the relay payload for req and publishes it.
func (s *service) Send(ctx context.Context, req Request) (*Payload, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	p, err := s.providers.GetProvider(req.ProviderID)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		ClientName:       Sanitize(req.ClientName, maxName),
		ClientPhone:      Sanitize(req.ClientPhone, maxPhone),
		ClientCity:       Sanitize(req.ClientCity, maxCity),
		ProjectDesc:      Sanitize(req.ProjectDesc, maxProject),
		SpokenWith:       Sanitize(req.SpokenWith, maxSpoken),
		ElectricianName:  Sanitize(p.DisplayName(), maxName),
		ElectricianEmail: Sanitize(p.Email, maxEmail),
		ElectricianPhone: Sanitize(p.Phone, maxPhone),
		ElectricianCity:  Sanitize(p.Address.City, maxCity),
		ElectricianZip:   Sanitize(p.Address.Zip, maxZip),
		RequestDate:      s.now().In(s.location).Format(requestDateLayout),
	}

	if err := s.publisher.Publish(ctx, p.ID, *payload); err != nil {
		s.log.Errorw("contact request not delivered", "provider", p.ID, "error", err)
		return nil, fmt.Errorf("send contact request: %w", err)
	}
	s.log.Infow("contact request sent", "provider", p.ID)
	return payload, nil
}
