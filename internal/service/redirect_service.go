package service

import (
	"context"
	"errors"
	"log"
	"net/url"
	"time"

	"linklytics-be/internal/analytics"
	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/cache"
	"linklytics-be/internal/entities"
	"linklytics-be/internal/plan"
	"linklytics-be/internal/repository"
)

// RedirectState is the terminal state of one redirect resolution.
type RedirectState int

const (
	StateRedirecting RedirectState = iota
	StateBlocked                   // exists but paused or not yet active
	StateNotFound                  // absent or expired
)

// Resolution is the outcome of resolving an inbound short code.
type Resolution struct {
	State       RedirectState
	Destination string // set only when State is StateRedirecting
	Link        *entities.URL
	Premium     bool // owner's plan gates query merging and click capture
}

// RedirectService decides what happens to an inbound short code.
type RedirectService interface {
	// Resolve runs the full redirect path: state decision, destination
	// build, and the best-effort click counter bump.
	Resolve(ctx context.Context, code string, inboundQuery url.Values, userAgent string) (*Resolution, error)
	// Check runs only the state decision, for the client-side pre-check.
	Check(ctx context.Context, code string) (*Resolution, error)
}

type redirectService struct {
	urlRepo  repository.URLRepository
	userRepo repository.UserRepository
	cache    cache.Cache
}

const linkCacheTTL = 1 * time.Hour

// NewRedirectService creates a new redirect service. cacheClient may be nil.
func NewRedirectService(urlRepo repository.URLRepository, userRepo repository.UserRepository, cacheClient cache.Cache) RedirectService {
	return &redirectService{urlRepo: urlRepo, userRepo: userRepo, cache: cacheClient}
}

func (s *redirectService) Resolve(ctx context.Context, code string, inboundQuery url.Values, userAgent string) (*Resolution, error) {
	res, err := s.Check(ctx, code)
	if err != nil || res.State != StateRedirecting {
		return res, err
	}
	link := res.Link

	tier, err := s.ownerPlan(ctx, link.UserID)
	if err != nil {
		return nil, err
	}
	res.Premium = plan.IsPremium(tier)

	dest, err := url.Parse(link.OriginalURL)
	if err != nil {
		// Stored URLs are validated on create; treat a corrupt one as gone.
		res.State = StateNotFound
		return res, nil
	}

	// Per-device override before any query handling.
	switch analytics.DeviceHint(userAgent) {
	case "ios":
		if link.IOSURL != nil && *link.IOSURL != "" {
			if d, err := url.Parse(*link.IOSURL); err == nil {
				dest = d
			}
		}
	case "android":
		if link.AndroidURL != nil && *link.AndroidURL != "" {
			if d, err := url.Parse(*link.AndroidURL); err == nil {
				dest = d
			}
		}
	}

	// Inbound query params ride along only for premium owners; free-tier
	// links never get query merging.
	if res.Premium && len(inboundQuery) > 0 {
		q := dest.Query()
		for key, values := range inboundQuery {
			if len(values) > 0 {
				q.Set(key, values[0])
			}
		}
		dest.RawQuery = q.Encode()
	}
	res.Destination = dest.String()

	// Best-effort: the redirect must not fail because the counter did.
	if err := s.urlRepo.IncrementClicks(ctx, link.ShortCode); err != nil {
		log.Printf("failed to increment clicks for %s: %v", link.ShortCode, err)
	}

	return res, nil
}

func (s *redirectService) Check(ctx context.Context, code string) (*Resolution, error) {
	link, err := s.lookup(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &Resolution{State: StateNotFound}, nil
		}
		return nil, err
	}

	now := time.Now().UTC()

	// Expired links behave as if the storage sweep already removed them.
	if link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
		return &Resolution{State: StateNotFound}, nil
	}

	// Exists but not serving: paused, or before its activation window.
	if !link.IsActive || (link.ActivatesAt != nil && now.Before(*link.ActivatesAt)) {
		return &Resolution{State: StateBlocked, Link: link}, nil
	}

	return &Resolution{State: StateRedirecting, Link: link}, nil
}

// lookup hits the cache first and falls back to the either-match query.
func (s *redirectService) lookup(ctx context.Context, code string) (*entities.URL, error) {
	if s.cache != nil {
		var cached entities.URL
		if err := s.cache.GetJSON(ctx, cache.LinkKey(code), &cached); err == nil && cached.ShortCode != "" {
			return &cached, nil
		}
	}

	link, err := s.urlRepo.ResolveForRedirect(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.LinkKey(code), link, linkCacheTTL); err != nil {
			log.Printf("failed to cache link %s: %v", code, err)
		}
	}
	return link, nil
}

func (s *redirectService) ownerPlan(ctx context.Context, userID string) (plan.Plan, error) {
	tier, err := s.userRepo.GetSubscriptionPlan(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return plan.Free, nil
		}
		return plan.Free, err
	}
	return plan.Normalize(tier), nil
}
