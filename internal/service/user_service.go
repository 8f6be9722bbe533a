package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/media"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/view"
)

// ErrWrongPassword is returned when the current password check fails.
var ErrWrongPassword = errors.New("current password is incorrect")

// UserService exposes profile operations.
type UserService interface {
	GetProfile(ctx context.Context, userID, viewerID uint) (*view.ProfileView, error)
	ListProfiles(ctx context.Context, viewerID uint, offset, limit int) ([]view.ProfileView, int64, error)
	SetPassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error)
	DeleteAvatar(ctx context.Context, userID uint) error
	DeleteUser(ctx context.Context, userID uint) error
}

type userService struct {
	userRepo     repository.UserRepository
	relationRepo repository.RelationRepository
	mediaStore   media.Store
}

// NewUserService builds a UserService.
func NewUserService(userRepo repository.UserRepository, relationRepo repository.RelationRepository, mediaStore media.Store) UserService {
	return &userService{userRepo: userRepo, relationRepo: relationRepo, mediaStore: mediaStore}
}

// GetProfile returns a profile view with the viewer's subscription flag.
// Anonymous viewers (zero viewerID) get is_subscribed=false.
func (s *userService) GetProfile(ctx context.Context, userID, viewerID uint) (*view.ProfileView, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if viewerID != 0 && viewerID != userID {
		subscribed, err = s.relationRepo.FollowExists(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
	}

	v := view.NewProfileView(*user, subscribed)
	return &v, nil
}

// ListProfiles returns paged profile views relative to the viewer.
func (s *userService) ListProfiles(ctx context.Context, viewerID uint, offset, limit int) ([]view.ProfileView, int64, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	views := make([]view.ProfileView, 0, len(users))
	for _, user := range users {
		subscribed := false
		if viewerID != 0 && viewerID != user.ID {
			subscribed, err = s.relationRepo.FollowExists(ctx, viewerID, user.ID)
			if err != nil {
				return nil, 0, err
			}
		}
		views = append(views, view.NewProfileView(user, subscribed))
	}
	return views, total, nil
}

// SetPassword verifies the current password and stores the new hash.
func (s *userService) SetPassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// SetAvatar stores a base64 image payload and saves its URL on the profile.
func (s *userService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.mediaStore.SaveBase64(ctx, dataURI, "users/images")
	if err != nil {
		if errors.Is(err, media.ErrInvalidImagePayload) {
			return "", apperrors.NewValidationError("avatar", err.Error())
		}
		return "", fmt.Errorf("store avatar: %w", err)
	}

	user.Avatar = url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}
	return url, nil
}

// DeleteAvatar removes the stored avatar, if any. Deleting an absent avatar
// is a no-op.
func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return nil
	}

	_ = s.mediaStore.Delete(ctx, user.Avatar) // object removal is best effort
	user.Avatar = ""
	return s.userRepo.Update(ctx, user)
}

// DeleteUser removes the profile and everything owned by it in one
// transaction (recipes, junction rows, relations).
func (s *userService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *userService) findUser(ctx context.Context, id uint) (*model.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
