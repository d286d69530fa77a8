package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/google/uuid"
)

type AgentService struct {
	profiles repository.ProfileRepository
}

func NewAgentService(profiles repository.ProfileRepository) *AgentService {
	return &AgentService{profiles: profiles}
}

// SetVerification is the admin moderation path for agent identity checks.
// is_verified always follows the status.
func (s *AgentService) SetVerification(ctx context.Context, tenantID uuid.UUID, status string) error {
	if !models.ValidVerificationStatus(status) {
		return ErrInvalidVerification
	}
	if err := s.profiles.SetVerification(ctx, tenantID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("set verification: %w", err)
	}
	return nil
}
