package services

import (
	"context"
	"fmt"
	"strings"

	"eventos-web/internal/logger"
	"eventos-web/internal/models"
	"eventos-web/internal/storage"

	"github.com/go-playground/validator/v10"
)

// ProfileService maintains the signed-in buyer's profile
type ProfileService struct {
	backend  BackendFor
	validate *validator.Validate
}

// NewProfileService creates a new profile service
func NewProfileService(backend BackendFor) *ProfileService {
	return &ProfileService{backend: backend, validate: newValidator()}
}

// LinkDocument stores the buyer's identity document on their profile
func (s *ProfileService) LinkDocument(ctx context.Context, state *storage.ClientState, req *models.DocumentUpdateRequest) (*models.AttenderProfile, error) {
	req.IDDocument = strings.TrimSpace(req.IDDocument)
	req.IDDocumentType = strings.ToUpper(strings.TrimSpace(req.IDDocumentType))

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	backend := s.backend(state)

	profile, err := backend.GetCurrentUserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	updated, err := backend.UpdateUserProfile(ctx, profile.ID, map[string]string{
		"idDocumentType": req.IDDocumentType,
		"idDocument":     req.IDDocument,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	logger.Log.Infow("identity document linked", "user_id", profile.ID, "document_type", req.IDDocumentType)
	return updated, nil
}
