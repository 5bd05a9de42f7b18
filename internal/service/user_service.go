package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput treats empty strings as "not provided".
type UpdateProfileInput struct {
	UserID string
	Name   string
	Bio    string
	Avatar string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]any{}
	if name := strings.TrimSpace(in.Name); name != "" {
		fields["name"] = name
	}
	if in.Bio != "" {
		if err := validation.ValidateBio(in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["bio"] = in.Bio
	}
	if in.Avatar != "" {
		if err := validation.ValidateImage(in.Avatar); err != nil {
			return nil, models.NewValidationError("Avatar must be a valid URL")
		}
		fields["avatar"] = in.Avatar
	}

	return s.userRepo.UpdateProfile(ctx, in.UserID, fields)
}
