// services/auth_service.go
package services

import (
	"context"
	"errors"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	db     *gorm.DB
	tokens *utils.TokenManager
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Register creates a CUSTOMER account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Password: in.Password,
		Role:     models.RoleCustomer,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if conflict := emailConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, utils.FromDBError(err, "")
	}
	return s.issue(&user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(in.Email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}
	if err != nil {
		return nil, utils.FromDBError(err, "")
	}
	if !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		utils.Logger.WithError(err).Warnf("Failed to record last login for %s", user.Email)
	}
	user.LastLogin = &now
	return s.issue(&user)
}

// Me returns the account behind actor.
func (s *AuthService) Me(ctx context.Context, actor policy.Actor) (*models.User, error) {
	if err := policy.Authorize(actor, policy.ActionViewProfile, nil); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", actor.Subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewUnauthorizedError("Account no longer exists")
		}
		return nil, utils.FromDBError(err, "")
	}
	return &user, nil
}

// GuestToken grants the anonymous creator of bookingID access to that booking.
func (s *AuthService) GuestToken(bookingID uuid.UUID) (string, error) {
	token, err := s.tokens.GenerateGuestToken(bookingID.String(), string(policy.RoleGuest))
	if err != nil {
		return "", utils.NewInternalError("Failed to issue booking token", err)
	}
	return token, nil
}

// ResolveActor turns a bearer token into an Actor. An empty token yields the
// anonymous actor; a bad one yields an error. Account tokens take the role
// stored on the user row, and a deleted account is rejected.
func (s *AuthService) ResolveActor(ctx context.Context, token string) (policy.Actor, error) {
	if token == "" {
		return policy.Anonymous(), nil
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return policy.Anonymous(), err
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return policy.Anonymous(), err
	}

	role := models.Role(claims.Role)
	if role == policy.RoleGuest {
		return policy.GuestActor(subject), nil
	}
	if !role.Valid() {
		return policy.Anonymous(), errors.New("unknown role in token: " + claims.Role)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&user, "id = ?", subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Anonymous(), errors.New("account no longer exists")
		}
		return policy.Anonymous(), err
	}
	if user.Role != role {
		utils.Logger.WithFields(logrus.Fields{
			"user_id":    user.ID,
			"token_role": role,
			"role":       user.Role,
		}).Info("Token role is stale, using current role")
	}
	return policy.AccountActor(user.ID, user.Role), nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.AccountTTL()
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
