package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"linklytics-be/internal/analytics"
	"linklytics-be/internal/entities"
	"linklytics-be/internal/service"

	"github.com/gin-gonic/gin"
)

// stubRedirectService returns a fixed resolution regardless of code.
type stubRedirectService struct {
	res *service.Resolution
}

func (s *stubRedirectService) Resolve(_ context.Context, _ string, _ url.Values, _ string) (*service.Resolution, error) {
	return s.res, nil
}

func (s *stubRedirectService) Check(_ context.Context, _ string) (*service.Resolution, error) {
	return s.res, nil
}

type recordingWriter struct {
	mu     sync.Mutex
	events []*entities.ClickEvent
}

func (w *recordingWriter) Insert(_ context.Context, evt *entities.ClickEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, evt)
	return nil
}

type fixedLocator struct{}

func (fixedLocator) Lookup(_ string) (string, string) { return "IN", "Mumbai" }

// blockingLocator parks every lookup until released.
type blockingLocator struct {
	release chan struct{}
}

func (b *blockingLocator) Lookup(_ string) (string, string) {
	<-b.release
	return "IN", "Mumbai"
}

func redirectRouterWithGeo(res *service.Resolution, writer *recordingWriter, geo analytics.Locator) (*gin.Engine, *analytics.Sink) {
	gin.SetMode(gin.TestMode)
	classifier := analytics.NewClassifier(false)
	sink := analytics.NewSink(writer, geo, 16, 1)
	ctrl := NewShortenerController(nil, &stubRedirectService{res: res}, classifier, sink)

	router := gin.New()
	router.GET("/redirect/:shortCode", ctrl.Redirect)
	router.GET("/:shortCode", ctrl.Validate)
	return router, sink
}

func redirectRouter(res *service.Resolution, writer *recordingWriter) (*gin.Engine, *analytics.Sink) {
	return redirectRouterWithGeo(res, writer, fixedLocator{})
}

func TestRedirectNotFound(t *testing.T) {
	router, _ := redirectRouter(&service.Resolution{State: service.StateNotFound}, &recordingWriter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/redirect/nosuch", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRedirectBlocked(t *testing.T) {
	router, _ := redirectRouter(&service.Resolution{State: service.StateBlocked}, &recordingWriter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/redirect/paused1", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRedirectFreeOwnerSkipsClickCapture(t *testing.T) {
	writer := &recordingWriter{}
	router, sink := redirectRouter(&service.Resolution{
		State:       service.StateRedirecting,
		Destination: "https://example.com",
		Link:        &entities.URL{ID: "url-1", ShortCode: "abc123"},
		Premium:     false,
	}, writer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/redirect/abc123", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "https://example.com" {
		t.Errorf("Location = %q", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("free-tier redirect set a visitor cookie")
	}

	sink.Shutdown(time.Second)
	if len(writer.events) != 0 {
		t.Errorf("free-tier redirect persisted %d click events", len(writer.events))
	}
}

func TestRedirectPremiumOwnerCapturesClick(t *testing.T) {
	writer := &recordingWriter{}
	router, sink := redirectRouter(&service.Resolution{
		State:       service.StateRedirecting,
		Destination: "https://example.com/?utm_source=newsletter",
		Link:        &entities.URL{ID: "url-1", ShortCode: "abc123"},
		Premium:     true,
	}, writer)

	req := httptest.NewRequest(http.MethodGet, "/redirect/abc123", nil)
	req.Header.Set("Referer", "https://news.ycombinator.com/")
	req.RemoteAddr = "203.0.113.7:43210"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	var visitorCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == analytics.VisitorCookieName {
			visitorCookie = c
		}
	}
	if visitorCookie == nil {
		t.Fatal("first premium visit did not set the visitor cookie")
	}
	if visitorCookie.Value != "abc123" {
		t.Errorf("cookie value = %q, want the short code", visitorCookie.Value)
	}
	if visitorCookie.MaxAge != analytics.VisitorCookieMaxAge {
		t.Errorf("cookie max-age = %d, want %d", visitorCookie.MaxAge, analytics.VisitorCookieMaxAge)
	}

	sink.Shutdown(time.Second)
	if len(writer.events) != 1 {
		t.Fatalf("persisted %d click events, want 1", len(writer.events))
	}
	evt := writer.events[0]
	if !evt.IsUnique {
		t.Error("first visit should count as unique")
	}
	if evt.Referrer != "https://news.ycombinator.com/" {
		t.Errorf("referrer = %q", evt.Referrer)
	}
	if evt.UTMSource == nil || *evt.UTMSource != "newsletter" {
		t.Errorf("UTMSource = %v, want newsletter", evt.UTMSource)
	}
	if evt.Country != "IN" || evt.City != "Mumbai" {
		t.Errorf("Country/City = %q/%q, want the sink-resolved location", evt.Country, evt.City)
	}
}

func TestRedirectNotBlockedByGeoLookup(t *testing.T) {
	writer := &recordingWriter{}
	geo := &blockingLocator{release: make(chan struct{})}
	router, sink := redirectRouterWithGeo(&service.Resolution{
		State:       service.StateRedirecting,
		Destination: "https://example.com",
		Link:        &entities.URL{ID: "url-1", ShortCode: "abc123"},
		Premium:     true,
	}, writer, geo)

	req := httptest.NewRequest(http.MethodGet, "/redirect/abc123", nil)
	req.RemoteAddr = "203.0.113.7:43210"

	// The lookup is still parked when the handler returns; a stalled geo
	// service must never stall the visitor.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	close(geo.release)
	sink.Shutdown(time.Second)

	if len(writer.events) != 1 {
		t.Fatalf("persisted %d click events, want 1", len(writer.events))
	}
	if writer.events[0].Country != "IN" {
		t.Errorf("Country = %q, want the lookup result once released", writer.events[0].Country)
	}
}

func TestRedirectReturningVisitorNotUnique(t *testing.T) {
	writer := &recordingWriter{}
	router, sink := redirectRouter(&service.Resolution{
		State:       service.StateRedirecting,
		Destination: "https://example.com",
		Link:        &entities.URL{ID: "url-1", ShortCode: "abc123"},
		Premium:     true,
	}, writer)

	req := httptest.NewRequest(http.MethodGet, "/redirect/abc123", nil)
	req.AddCookie(&http.Cookie{Name: analytics.VisitorCookieName, Value: "abc123"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == analytics.VisitorCookieName {
			t.Error("returning visitor should not get the cookie reissued")
		}
	}

	sink.Shutdown(time.Second)
	if len(writer.events) != 1 {
		t.Fatalf("persisted %d click events, want 1", len(writer.events))
	}
	if writer.events[0].IsUnique {
		t.Error("returning visitor counted as unique")
	}
}

func TestValidateStates(t *testing.T) {
	cases := []struct {
		name       string
		res        *service.Resolution
		wantStatus int
	}{
		{"valid", &service.Resolution{State: service.StateRedirecting, Link: &entities.URL{ShortCode: "abc123"}}, http.StatusOK},
		{"paused", &service.Resolution{State: service.StateBlocked}, http.StatusForbidden},
		{"missing", &service.Resolution{State: service.StateNotFound}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := redirectRouter(tc.res, &recordingWriter{})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
				t.Errorf("content type = %q, want JSON", w.Header().Get("Content-Type"))
			}
		})
	}
}
