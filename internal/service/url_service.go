package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/base62"
	"linklytics-be/internal/cache"
	"linklytics-be/internal/entities"
	"linklytics-be/internal/models"
	"linklytics-be/internal/plan"
	"linklytics-be/internal/repository"
)

// URLService defines the interface for link business logic
type URLService interface {
	Generate(ctx context.Context, userID string, tier plan.Plan, req *models.GenerateURLRequest) (*models.GenerateURLResponse, error)
	Update(ctx context.Context, shortCode, userID string, tier plan.Plan, req *models.UpdateURLRequest) error
	Delete(ctx context.Context, shortCode, userID string) error
	List(ctx context.Context, userID string) ([]*models.URLSummary, error)
	Details(ctx context.Context, shortCode, userID string) (*models.URLDetails, error)
}

type urlService struct {
	urlRepo     repository.URLRepository
	counterRepo repository.CounterRepository
	userRepo    repository.UserRepository
	cache       cache.Cache
	baseURL     string
}

// NewURLService creates a new URL service. cacheClient may be nil.
func NewURLService(
	urlRepo repository.URLRepository,
	counterRepo repository.CounterRepository,
	userRepo repository.UserRepository,
	cacheClient cache.Cache,
	baseURL string,
) URLService {
	return &urlService{
		urlRepo:     urlRepo,
		counterRepo: counterRepo,
		userRepo:    userRepo,
		cache:       cacheClient,
		baseURL:     baseURL,
	}
}

// Generate allocates a new short code for the caller. Premium features are
// plan-gated, FREE and PRO consume a generation credit, and a plain link to a
// destination the owner already shortened is reused instead of duplicated.
func (s *urlService) Generate(ctx context.Context, userID string, tier plan.Plan, req *models.GenerateURLRequest) (*models.GenerateURLResponse, error) {
	wantsPremium := req.RequestsPremiumFeatures()
	if wantsPremium && !plan.IsPremium(tier) {
		return nil, apperrors.ErrPremiumRequired
	}

	if err := validateWindow(req.ActivatesAt, req.ExpiresAt); err != nil {
		return nil, err
	}

	if plan.UsesCredits(tier) {
		credits, err := s.userRepo.GetAvailableCredits(ctx, userID)
		if err != nil {
			return nil, err
		}
		if credits <= 0 {
			return nil, apperrors.ErrNoCredits
		}
	}

	// Plain links are deduplicated per owner+destination; anything carrying
	// premium options always gets a fresh code.
	if !wantsPremium {
		existing, err := s.urlRepo.FindExisting(ctx, req.OriginalURL, userID)
		if err == nil {
			return &models.GenerateURLResponse{
				ShortCode:   existing,
				ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, existing),
				OriginalURL: req.OriginalURL,
				Reused:      true,
			}, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	// Best-effort pre-check; the unique index decides the race at write time.
	if req.CustomAlias != nil {
		taken, err := s.urlRepo.AliasInUse(ctx, *req.CustomAlias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrAliasTaken
		}
	}

	id, err := s.counterRepo.Next(ctx, repository.URLCounter)
	if err != nil {
		return nil, err
	}
	shortCode := base62.Encode(uint64(id))

	var passwordHash string
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash link password: %w", err)
		}
		passwordHash = string(hashed)
	}

	params := repository.CreateURLParams{
		ShortCode:    shortCode,
		CustomAlias:  req.CustomAlias,
		OriginalURL:  req.OriginalURL,
		UserID:       userID,
		PasswordHash: passwordHash,
		ExpiresAt:    req.ExpiresAt,
		ActivatesAt:  req.ActivatesAt,
	}
	if req.DeviceURLs != nil {
		params.IOSURL = req.DeviceURLs.IOS
		params.AndroidURL = req.DeviceURLs.Android
	}

	url, err := s.urlRepo.Create(ctx, params)
	if err != nil {
		// A lost create leaves a gap in the sequence, which is acceptable;
		// a duplicate never is.
		return nil, err
	}

	if plan.UsesCredits(tier) {
		if err := s.userRepo.DecrementCredits(ctx, userID); err != nil {
			log.Printf("failed to decrement credits for user %s: %v", userID, err)
		}
	}

	return &models.GenerateURLResponse{
		ShortCode:   url.ShortCode,
		ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, url.ShortCode),
		OriginalURL: url.OriginalURL,
	}, nil
}

// Update applies a partial update. Ownership and existence share one combined
// predicate, so updating someone else's link is indistinguishable from
// updating a missing one.
func (s *urlService) Update(ctx context.Context, shortCode, userID string, tier plan.Plan, req *models.UpdateURLRequest) error {
	if req.RequestsPremiumFeatures() && !plan.IsPremium(tier) {
		return apperrors.ErrPremiumRequired
	}

	if err := validateWindow(req.ActivatesAt, req.ExpiresAt); err != nil {
		return err
	}

	existing, err := s.urlRepo.FindByOwner(ctx, shortCode, userID)
	if err != nil {
		return err
	}

	if req.CustomAlias != nil && (existing.CustomAlias == nil || *req.CustomAlias != *existing.CustomAlias) {
		taken, err := s.urlRepo.AliasInUse(ctx, *req.CustomAlias)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrAliasTaken
		}
	}

	params := repository.UpdateURLParams{
		OriginalURL: req.OriginalURL,
		CustomAlias: req.CustomAlias,
		IsActive:    req.IsActive,
	}
	if req.ExpiresAt != nil {
		params.SetExpiresAt = true
		params.ExpiresAt = req.ExpiresAt
	}
	if req.ActivatesAt != nil {
		params.SetActivates = true
		params.ActivatesAt = req.ActivatesAt
	}
	if req.Password != nil {
		if *req.Password == "" {
			// Explicit empty value clears the password.
			params.ClearPassword = true
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash link password: %w", err)
			}
			h := string(hashed)
			params.PasswordHash = &h
		}
	}
	if req.DeviceURLs != nil {
		params.SetDeviceURLs = true
		params.IOSURL = req.DeviceURLs.IOS
		params.AndroidURL = req.DeviceURLs.Android
	}

	if err := s.urlRepo.Update(ctx, shortCode, userID, params); err != nil {
		return err
	}

	s.invalidate(ctx, existing)
	return nil
}

// Delete removes a link under the combined code+owner predicate. Historical
// click events are kept.
func (s *urlService) Delete(ctx context.Context, shortCode, userID string) error {
	existing, err := s.urlRepo.FindByOwner(ctx, shortCode, userID)
	if err != nil {
		return err
	}

	if err := s.urlRepo.Delete(ctx, shortCode, userID); err != nil {
		return err
	}

	s.invalidate(ctx, existing)
	return nil
}

// List returns the owner's links as restricted projections.
func (s *urlService) List(ctx context.Context, userID string) ([]*models.URLSummary, error) {
	urls, err := s.urlRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*models.URLSummary, len(urls))
	for i, u := range urls {
		summaries[i] = &models.URLSummary{
			ShortCode:   u.ShortCode,
			CustomAlias: u.CustomAlias,
			OriginalURL: u.OriginalURL,
			TotalClicks: u.TotalClicks,
			IsActive:    u.IsActive,
		}
	}
	return summaries, nil
}

// Details returns the owner-facing view of one link.
func (s *urlService) Details(ctx context.Context, shortCode, userID string) (*models.URLDetails, error) {
	u, err := s.urlRepo.FindByOwner(ctx, shortCode, userID)
	if err != nil {
		return nil, err
	}

	details := &models.URLDetails{
		ShortCode:   u.ShortCode,
		CustomAlias: u.CustomAlias,
		OriginalURL: u.OriginalURL,
		IsActive:    u.IsActive,
		HasPassword: u.PasswordHash != "",
		ExpiresAt:   u.ExpiresAt,
		ActivatesAt: u.ActivatesAt,
		TotalClicks: u.TotalClicks,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.IOSURL != nil || u.AndroidURL != nil {
		details.DeviceURLs = &models.DeviceURLs{IOS: u.IOSURL, Android: u.AndroidURL}
	}
	return details, nil
}

// validateWindow rejects a serving window that ends before it starts.
func validateWindow(activatesAt, expiresAt *time.Time) error {
	if activatesAt != nil && expiresAt != nil && !expiresAt.After(*activatesAt) {
		return apperrors.NewValidationError("expires_at", "must be after activates_at")
	}
	return nil
}

// invalidate drops every cache key the link answers to.
func (s *urlService) invalidate(ctx context.Context, u *entities.URL) {
	if s.cache == nil {
		return
	}
	for _, key := range u.PublicKeys() {
		if err := s.cache.Delete(ctx, cache.LinkKey(key)); err != nil {
			log.Printf("failed to invalidate cache for %s: %v", key, err)
		}
	}
}
