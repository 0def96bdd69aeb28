package preferences

import (
	"context"
	"fmt"

	"github.com/drstein77/littlelemon/internal/models"
	"github.com/drstein77/littlelemon/internal/storage"
	"go.uber.org/zap"
)

const (
	KeyFirstName = "firstName"
	KeyLastName  = "lastName"
	KeyEmail     = "email"
)

var profileKeys = []string{KeyFirstName, KeyLastName, KeyEmail}

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Keeper interface for key-value persistence
type Keeper interface {
	GetPreferences(context.Context, []string) (map[string]string, error)
	SetPreferences(context.Context, map[string]string) error
}

// Service reads and writes the user profile. Values are stored as-is.
type Service struct {
	keeper Keeper
	log    Log
}

// NewService creates a Service. keeper may be nil, in which case every call
// fails with storage.ErrStorageUnavailable.
func NewService(keeper Keeper, log Log) *Service {
	return &Service{keeper: keeper, log: log}
}

func (s *Service) Profile(ctx context.Context) (*models.Profile, error) {
	if s.keeper == nil {
		return nil, storage.ErrStorageUnavailable
	}

	values, err := s.keeper.GetPreferences(ctx, profileKeys)
	if err != nil {
		s.log.Error("Error loading user data", zap.Error(err))
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &models.Profile{
		FirstName: values[KeyFirstName],
		LastName:  values[KeyLastName],
		Email:     values[KeyEmail],
	}, nil
}

func (s *Service) SaveProfile(ctx context.Context, p models.Profile) error {
	if s.keeper == nil {
		return storage.ErrStorageUnavailable
	}

	err := s.keeper.SetPreferences(ctx, map[string]string{
		KeyFirstName: p.FirstName,
		KeyLastName:  p.LastName,
		KeyEmail:     p.Email,
	})
	if err != nil {
		s.log.Error("Error saving changes", zap.Error(err))
		return fmt.Errorf("failed to save profile: %w", err)
	}

	s.log.Info("Profile saved")
	return nil
}
