package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"catalog-backend/apperrors"
	"catalog-backend/database"
	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/store"
	"catalog-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService struct {
	runner *database.TxRunner
	log    *zap.Logger
}

func NewUserService(runner *database.TxRunner, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{runner: runner, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and mints its human id from the USER:<ROLE>
// sequence in the same transaction.
func (s *UserService) Register(ctx context.Context, req dtos.RegisterRequest, client models.ClientInfo) (*models.User, error) {
	email := normalizeEmail(req.Email)
	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	var user models.User
	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict(apperrors.CodeConflict, "Email already registered")
		}

		key := "USER:" + strings.ToUpper(role)
		humanID, err := store.NewCounterStore(tx).NextID(ctx, key, models.HumanIDPrefix(role), store.DefaultPadding)
		if err != nil {
			return err
		}

		user = models.User{
			HumanID:    humanID,
			Email:      email,
			Password:   string(hashed),
			Name:       strings.TrimSpace(req.Name),
			Role:       role,
			IsActive:   true,
			ClientInfo: client,
		}
		if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict(apperrors.CodeConflict, "Email already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("human_id", user.HumanID), zap.String("role", user.Role))
	return &user, nil
}

// Authenticate checks credentials and records the login.
func (s *UserService) Authenticate(ctx context.Context, email, password string, client models.ClientInfo) (*models.User, error) {
	var user models.User
	err := s.runner.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("Your account has been deactivated")
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.ClientInfo = client
	err = s.runner.DB.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"last_login_at":     now,
		"client_device":     client.Device,
		"client_browser":    client.Browser,
		"client_ip_address": client.IPAddress,
		"client_user_agent": client.UserAgent,
	}).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh resolves the user behind a refresh token. Tokens issued before the
// user's token version was bumped are rejected.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.User, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Unauthorized("Invalid or expired refresh token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("Your account has been deactivated")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apperrors.Unauthorized("Refresh token has been revoked")
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.runner.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) IssueTokens(user *models.User) (*TokenPair, error) {
	sub := utils.TokenSubject{
		UserID:       user.ID,
		HumanID:      user.HumanID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}

	access, err := utils.GenerateToken(sub)
	if err != nil {
		return nil, apperrors.Internal("Failed to generate token", err)
	}
	refresh, err := utils.GenerateRefreshToken(sub)
	if err != nil {
		return nil, apperrors.Internal("Failed to generate refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
