package services

import (
	"context"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"github.com/rs/zerolog"
)

type AccountService struct {
	profiles repository.DealerProfileRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountService(profiles repository.DealerProfileRepository, log zerolog.Logger) *AccountService {
	return &AccountService{
		profiles: profiles,
		log:      log.With().Str("component", "account").Logger(),
		now:      time.Now,
	}
}

func requireDealer(sess domain.Session) error {
	if !sess.User.Role.HasDealerAccount() {
		return domain.NewPermissionError("only dealers have an account profile")
	}
	return nil
}

// Get returns the caller's profile. A dealer who never saved one gets an
// empty profile.
func (s *AccountService) Get(ctx context.Context, sess domain.Session) (*domain.DealerProfile, error) {
	if err := requireDealer(sess); err != nil {
		return nil, err
	}
	p, err := s.profiles.Get(ctx, sess.User.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &domain.DealerProfile{UserID: sess.User.ID}
	}
	return p, nil
}

// Update replaces the caller's profile wholesale.
func (s *AccountService) Update(ctx context.Context, sess domain.Session, p domain.DealerProfile) (*domain.DealerProfile, error) {
	if err := requireDealer(sess); err != nil {
		return nil, err
	}
	p.UserID = sess.User.ID
	p.UpdatedAt = s.now()
	if err := s.profiles.Save(ctx, &p); err != nil {
		return nil, err
	}
	s.log.Info().Uint64("user_id", p.UserID).Msg("dealer profile updated")
	return &p, nil
}
