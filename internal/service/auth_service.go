package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/jwt"
	"linklytics-be/internal/models"
	"linklytics-be/internal/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

type authService struct {
	userRepo       repository.UserRepository
	jwtService     *jwt.JWTService
	defaultCredits int
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtService *jwt.JWTService, defaultCredits int) AuthService {
	return &authService{
		userRepo:       userRepo,
		jwtService:     jwtService,
		defaultCredits: defaultCredits,
	}
}

// Register creates a new user account and logs it in.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique constraint on email decides the duplicate race.
	user, err := s.userRepo.Create(ctx, req.Email, string(hashedPassword), req.Name, s.defaultCredits)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.SubscriptionPlan)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.RegisterResponse{
		Message: "User registered successfully",
		User: models.AuthResponse{
			UserID:           user.ID,
			Email:            user.Email,
			Name:             user.Name,
			SubscriptionPlan: user.SubscriptionPlan,
			AvailableCredits: user.AvailableCredits,
			CreatedAt:        user.CreatedAt,
			Token:            token,
		},
	}, nil
}

// Login authenticates a user and returns user info with JWT token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidLogin
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidLogin
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.SubscriptionPlan)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		UserID:           user.ID,
		Email:            user.Email,
		Name:             user.Name,
		SubscriptionPlan: user.SubscriptionPlan,
		AvailableCredits: user.AvailableCredits,
		CreatedAt:        user.CreatedAt,
		Token:            token,
	}, nil
}
