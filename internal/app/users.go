package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goldedge/rewards/internal/adapters/session"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/referral"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/logger"
	"github.com/goldedge/rewards/pkg/metrics"
)

const codeAttempts = 5

// Registration is the input of Register.
type Registration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// UserView is the public projection of a session.
type UserView struct {
	UserID          string               `json:"user_id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone,omitempty"`
	ReferralCode    string               `json:"referral_code"`
	ReferredBy      string               `json:"referred_by,omitempty"`
	Tier            int                  `json:"tier"`
	TierName        string               `json:"tier_name"`
	Activated       bool                 `json:"activated"`
	Suspended       bool                 `json:"suspended"`
	Balance         float64              `json:"balance"`
	BonusClaimed    bool                 `json:"bonus_claimed"`
	TasksCompleted  int                  `json:"tasks_completed"`
	ReferralCount   int                  `json:"referral_count"`
	WithdrawalCount int                  `json:"withdrawal_count"`
	Transactions    []wallet.Transaction `json:"transactions"`
	CreatedAt       time.Time            `json:"created_at"`
}

func viewOf(s *session.Session) UserView {
	txs := append([]wallet.Transaction{}, s.Transactions...)
	return UserView{
		UserID:          s.UserID,
		Name:            s.Name,
		Email:           s.Email,
		Phone:           s.Phone,
		ReferralCode:    s.ReferralCode,
		ReferredBy:      s.ReferredBy,
		Tier:            s.Tier,
		TierName:        tier.Must(s.Tier).Name,
		Activated:       s.Activated,
		Suspended:       s.Suspended,
		Balance:         s.Balance,
		BonusClaimed:    s.BonusClaimed,
		TasksCompleted:  len(s.CompletedTasks),
		ReferralCount:   s.ReferralCount,
		WithdrawalCount: s.WithdrawalCount,
		Transactions:    txs,
		CreatedAt:       s.CreatedAt,
	}
}

// Register creates a tier 0 account that must be activated before it can
// earn. An unknown referral code fails under the strict policy and is
// ignored under the lenient one.
func (s *Service) Register(ctx context.Context, r Registration) (UserView, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return UserView{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email := strings.TrimSpace(r.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return UserView{}, fmt.Errorf("%w: email %q", ErrInvalidInput, r.Email)
	}

	var upline string
	if code := strings.ToUpper(strings.TrimSpace(r.ReferralCode)); code != "" {
		owner, err := s.store.FindByReferralCode(ctx, code)
		switch {
		case err == nil:
			upline = owner.UserID
		case errors.Is(err, session.ErrNotFound) && s.policy == model.Lenient:
			s.logger.Warn(ctx, "ignoring unknown referral code", logger.String("code", code))
		case errors.Is(err, session.ErrNotFound):
			return UserView{}, fmt.Errorf("%w: %s", ErrInvalidReferral, code)
		default:
			return UserView{}, fmt.Errorf("resolve referral code: %w", err)
		}
	}

	sess := session.Session{
		UserID:     uuid.NewString(),
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(r.Phone),
		ReferredBy: upline,
		CreatedAt:  s.now(),
	}
	var err error
	for range codeAttempts {
		sess.ReferralCode = referral.NewCode()
		if err = s.store.Create(ctx, sess); !errors.Is(err, session.ErrExists) {
			break
		}
	}
	if err != nil {
		return UserView{}, fmt.Errorf("create session: %w", err)
	}

	if upline != "" {
		if _, err := s.update(ctx, upline, func(u *session.Session) error {
			u.ReferralCount++
			return nil
		}); err != nil {
			s.logger.Warn(ctx, "referral count not updated", logger.String("upline", upline), logger.Error(err))
		}
	}

	metrics.UpdateRegisteredUsers(s.store.Count(ctx))
	s.logger.Info(ctx, "user registered",
		logger.String("userID", sess.UserID),
		logger.Bool("referred", upline != ""),
	)
	return viewOf(&sess), nil
}

// User returns the account of userID.
func (s *Service) User(ctx context.Context, userID string) (UserView, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return viewOf(&sess), nil
}

// Activate moves the user onto tierID and unlocks tasks. Once activated a
// user may only stay on or move up from the current tier.
func (s *Service) Activate(ctx context.Context, userID string, tierID int) (UserView, error) {
	cfg, err := tier.Lookup(tierID, s.policy)
	if err != nil {
		return UserView{}, err
	}
	sess, err := s.update(ctx, userID, func(u *session.Session) error {
		if err := usable(u); err != nil {
			return err
		}
		if u.Activated && cfg.ID < u.Tier {
			return fmt.Errorf("%w: %d -> %d", ErrTierDowngrade, u.Tier, cfg.ID)
		}
		if u.Tier != cfg.ID {
			u.Batch = nil
		}
		u.Tier = cfg.ID
		u.Activated = true
		return nil
	})
	if err != nil {
		return UserView{}, err
	}
	s.logger.Info(ctx, "user activated", logger.String("userID", userID), logger.Int("tier", cfg.ID))
	return viewOf(&sess), nil
}

// ClaimWelcomeBonus credits the one-off welcome bonus.
func (s *Service) ClaimWelcomeBonus(ctx context.Context, userID string) (UserView, error) {
	sess, err := s.update(ctx, userID, func(u *session.Session) error {
		if err := usable(u); err != nil {
			return err
		}
		if u.BonusClaimed {
			return ErrBonusClaimed
		}
		u.BonusClaimed = true
		u.Credit(s.today(), wallet.WelcomeBonus)
		return nil
	})
	if err != nil {
		return UserView{}, err
	}
	s.publish(ctx, userID, SourceBonus, wallet.WelcomeBonus)
	return viewOf(&sess), nil
}

// SuspendUser blocks or unblocks every earning and wallet operation of a
// user. Reads stay available.
func (s *Service) SuspendUser(ctx context.Context, userID string, suspended bool) (UserView, error) {
	sess, err := s.update(ctx, userID, func(u *session.Session) error {
		u.Suspended = suspended
		return nil
	})
	if err != nil {
		return UserView{}, err
	}
	s.logger.Info(ctx, "suspension changed", logger.String("userID", userID), logger.Bool("suspended", suspended))
	return viewOf(&sess), nil
}

// TeamMember is one direct referral of a user.
type TeamMember struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Tier       int       `json:"tier"`
	Activated  bool      `json:"activated"`
	Commission float64   `json:"commission"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Team lists the direct referrals of userID with the commission each has
// earned them, oldest first.
func (s *Service) Team(ctx context.Context, userID string) ([]TeamMember, error) {
	owner, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	team := make([]TeamMember, 0, owner.ReferralCount)
	for i := range all {
		m := &all[i]
		if m.ReferredBy != userID {
			continue
		}
		team = append(team, TeamMember{
			UserID:     m.UserID,
			Name:       m.Name,
			Tier:       m.Tier,
			Activated:  m.Activated,
			Commission: owner.Commissions[m.UserID],
			JoinedAt:   m.CreatedAt,
		})
	}
	return team, nil
}
