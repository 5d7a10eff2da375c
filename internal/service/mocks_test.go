package service

import (
	"context"
	"time"

	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/entities"
	"linklytics-be/internal/models"
	"linklytics-be/internal/repository"
)

// mockURLRepo is an in-memory URLRepository keyed by short code. Custom
// aliases resolve through the same map, mirroring the either-match query.
type mockURLRepo struct {
	urls        map[string]*entities.URL
	createErr   error
	incremented []string
}

func newMockURLRepo() *mockURLRepo {
	return &mockURLRepo{urls: make(map[string]*entities.URL)}
}

func (m *mockURLRepo) add(u *entities.URL) {
	m.urls[u.ShortCode] = u
}

func (m *mockURLRepo) byCode(code string) *entities.URL {
	if u, ok := m.urls[code]; ok {
		return u
	}
	for _, u := range m.urls {
		if u.CustomAlias != nil && *u.CustomAlias == code {
			return u
		}
	}
	return nil
}

func (m *mockURLRepo) Create(_ context.Context, p repository.CreateURLParams) (*entities.URL, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if taken, _ := m.AliasInUse(context.Background(), p.ShortCode); taken {
		return nil, apperrors.ErrAliasTaken
	}
	if p.CustomAlias != nil {
		if taken, _ := m.AliasInUse(context.Background(), *p.CustomAlias); taken {
			return nil, apperrors.ErrAliasTaken
		}
	}
	u := &entities.URL{
		ID:           "id-" + p.ShortCode,
		ShortCode:    p.ShortCode,
		CustomAlias:  p.CustomAlias,
		OriginalURL:  p.OriginalURL,
		UserID:       p.UserID,
		PasswordHash: p.PasswordHash,
		IsActive:     true,
		ExpiresAt:    p.ExpiresAt,
		ActivatesAt:  p.ActivatesAt,
		IOSURL:       p.IOSURL,
		AndroidURL:   p.AndroidURL,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.urls[u.ShortCode] = u
	return u, nil
}

func (m *mockURLRepo) FindExisting(_ context.Context, originalURL, userID string) (string, error) {
	for _, u := range m.urls {
		plain := u.CustomAlias == nil && u.PasswordHash == "" &&
			u.ExpiresAt == nil && u.ActivatesAt == nil &&
			u.IOSURL == nil && u.AndroidURL == nil
		if u.UserID == userID && u.OriginalURL == originalURL && plain {
			return u.ShortCode, nil
		}
	}
	return "", apperrors.ErrNotFound
}

func (m *mockURLRepo) ResolveForRedirect(_ context.Context, code string) (*entities.URL, error) {
	if u := m.byCode(code); u != nil {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockURLRepo) FindByOwner(_ context.Context, shortCode, userID string) (*entities.URL, error) {
	u, ok := m.urls[shortCode]
	if !ok || u.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func (m *mockURLRepo) Update(_ context.Context, shortCode, userID string, p repository.UpdateURLParams) error {
	u, ok := m.urls[shortCode]
	if !ok || u.UserID != userID {
		return apperrors.ErrNotFound
	}
	if p.OriginalURL != nil {
		u.OriginalURL = *p.OriginalURL
	}
	if p.CustomAlias != nil {
		u.CustomAlias = p.CustomAlias
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.SetExpiresAt {
		u.ExpiresAt = p.ExpiresAt
	}
	if p.SetActivates {
		u.ActivatesAt = p.ActivatesAt
	}
	if p.ClearPassword {
		u.PasswordHash = ""
	} else if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.SetDeviceURLs {
		u.IOSURL = p.IOSURL
		u.AndroidURL = p.AndroidURL
	}
	return nil
}

func (m *mockURLRepo) Delete(_ context.Context, shortCode, userID string) error {
	u, ok := m.urls[shortCode]
	if !ok || u.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(m.urls, shortCode)
	return nil
}

func (m *mockURLRepo) IncrementClicks(_ context.Context, shortCode string) error {
	m.incremented = append(m.incremented, shortCode)
	if u := m.byCode(shortCode); u != nil {
		u.TotalClicks++
	}
	return nil
}

func (m *mockURLRepo) ListByOwner(_ context.Context, userID string) ([]*entities.URL, error) {
	var out []*entities.URL
	for _, u := range m.urls {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockURLRepo) AliasInUse(_ context.Context, alias string) (bool, error) {
	return m.byCode(alias) != nil, nil
}

// mockUserRepo backs the plan and credit lookups.
type mockUserRepo struct {
	users       map[string]*entities.User
	decremented int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*entities.User)}
}

func (m *mockUserRepo) addUser(id, tier string, credits int) {
	m.users[id] = &entities.User{ID: id, SubscriptionPlan: tier, AvailableCredits: credits}
}

func (m *mockUserRepo) Create(_ context.Context, email, passwordHash string, name *string, credits int) (*entities.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return nil, apperrors.ErrEmailTaken
		}
	}
	u := &entities.User{
		ID:               "user-" + email,
		Email:            email,
		PasswordHash:     passwordHash,
		Name:             name,
		SubscriptionPlan: "FREE",
		AvailableCredits: credits,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*entities.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) GetSubscriptionPlan(_ context.Context, id string) (string, error) {
	u, ok := m.users[id]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return u.SubscriptionPlan, nil
}

func (m *mockUserRepo) GetAvailableCredits(_ context.Context, id string) (int, error) {
	u, ok := m.users[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	return u.AvailableCredits, nil
}

func (m *mockUserRepo) DecrementCredits(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok || u.AvailableCredits <= 0 {
		return apperrors.ErrNoCredits
	}
	u.AvailableCredits--
	m.decremented++
	return nil
}

// mockCounterRepo hands out sequential IDs above the floor.
type mockCounterRepo struct {
	next int64
}

func (m *mockCounterRepo) Next(_ context.Context, _ string) (int64, error) {
	if m.next == 0 {
		m.next = 10000
	}
	m.next++
	return m.next, nil
}

// mockClickRepo records inserts and returns canned aggregates.
type mockClickRepo struct {
	inserted   []*entities.ClickEvent
	summary    *models.Summary
	lastSince  time.Time
	breakdowns []models.Breakdown
}

func (m *mockClickRepo) Insert(_ context.Context, evt *entities.ClickEvent) error {
	m.inserted = append(m.inserted, evt)
	return nil
}

func (m *mockClickRepo) Summary(_ context.Context, _ string, since time.Time) (*models.Summary, error) {
	m.lastSince = since
	return m.summary, nil
}

func (m *mockClickRepo) Timeseries(_ context.Context, _ string, since time.Time) ([]models.TimeseriesPoint, error) {
	m.lastSince = since
	return nil, nil
}

func (m *mockClickRepo) Devices(_ context.Context, _ string, since time.Time) ([]models.Breakdown, error) {
	m.lastSince = since
	return m.breakdowns, nil
}

func (m *mockClickRepo) UTMBreakdown(_ context.Context, _ string, since time.Time, utmField string) ([]models.Breakdown, error) {
	if !repository.IsValidUTMField(utmField) {
		return nil, apperrors.ErrInvalidUTMField
	}
	m.lastSince = since
	return m.breakdowns, nil
}

func (m *mockClickRepo) Locations(_ context.Context, _ string, since time.Time) ([]models.LocationRow, error) {
	m.lastSince = since
	return nil, nil
}

func (m *mockClickRepo) Referrers(_ context.Context, _ string, since time.Time) ([]models.Breakdown, error) {
	m.lastSince = since
	return m.breakdowns, nil
}
