package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
	"gomate-backend/internal/storage"

	"github.com/google/uuid"
)

const presignedURLTTL = 15 * time.Minute

type userService struct {
	userRepo     repository.UserRepository
	storage      storage.Backend
	allowedTypes []string
}

func NewUserService(userRepo repository.UserRepository, backend storage.Backend, allowedTypes []string) UserService {
	return &userService{
		userRepo:     userRepo,
		storage:      backend,
		allowedTypes: allowedTypes,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID int32, name, bio string) (*domain.User, error) {
	if name == "" {
		return nil, domain.Validationf("name is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Bio = bio
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetAvatarUploadURL(ctx context.Context, userID int32, filename, contentType string) (string, string, error) {
	if !s.typeAllowed(contentType) {
		return "", "", domain.Validationf("content type %s is not allowed", contentType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)

	uploadURL, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, presignedURLTTL)
	if err != nil {
		return "", "", domain.StorageError("failed to generate upload url", err)
	}
	return uploadURL, key, nil
}

func (s *userService) ConfirmAvatar(ctx context.Context, userID int32, key string) (*domain.User, error) {
	expectedPrefix := fmt.Sprintf("avatars/%d/", userID)
	if !strings.HasPrefix(key, expectedPrefix) {
		return nil, domain.Authorizationf("key does not belong to this user")
	}

	exists, _, err := s.storage.FileExists(ctx, key)
	if err != nil {
		return nil, domain.StorageError("failed to check uploaded file", err)
	}
	if !exists {
		return nil, domain.NotFoundf("uploaded file not found")
	}

	downloadURL, err := s.storage.GeneratePresignedDownloadURL(ctx, key, presignedURLTTL)
	if err != nil {
		return nil, domain.StorageError("failed to generate download url", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Remove the previous avatar if it lives in our bucket.
	if user.AvatarURL != "" {
		if oldKey := extractKey(user.AvatarURL, expectedPrefix); oldKey != "" && oldKey != key {
			_ = s.storage.DeleteFile(ctx, oldKey)
		}
	}

	user.AvatarURL = downloadURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) typeAllowed(contentType string) bool {
	for _, t := range s.allowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

func extractKey(url, prefix string) string {
	idx := strings.Index(url, prefix)
	if idx < 0 {
		return ""
	}
	key := url[idx:]
	if amp := strings.IndexByte(key, '&'); amp >= 0 {
		key = key[:amp]
	}
	return key
}
