package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkdeck/internal/profile"
	"linkdeck/internal/shortlink/models"
	"linkdeck/internal/shortlink/store"
	dErrors "linkdeck/pkg/domain-errors"
	"linkdeck/pkg/platform/sentinel"
)

const (
	slugAlphabet   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	generatedLen   = 7
	maxGenAttempts = 5
)

// Service resolves short codes and owns slug creation rules.
type Service struct {
	links    store.Store
	profiles profile.Store
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(links store.Store, profiles profile.Store, opts ...Option) (*Service, error) {
	if links == nil {
		return nil, errors.New("link store is required")
	}
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	svc := &Service{
		links:    links,
		profiles: profiles,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Resolve maps a short code to its redirect target. Codes arriving
// percent-encoded are decoded first; a broken encoding falls back to the
// raw string rather than failing, since the raw form may be a valid slug.
// Returns sentinel.ErrNotFound for anything that does not resolve; the
// caller must not distinguish unknown from disabled slugs.
func (s *Service) Resolve(ctx context.Context, code string) (*models.Resolution, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, sentinel.ErrNotFound
	}

	link, err := s.links.FindBySlug(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("resolve code: %w", err)
	}

	return &models.Resolution{LinkID: link.ID, TargetURL: link.TargetURL}, nil
}

// IsCodeAvailable reports whether a code may be claimed for a new link.
// Three namespaces are checked and all must be clear: active short links,
// the static reserved-word set, and usernames/profile slugs. The namespaces
// are deliberately separate; do not merge them.
func (s *Service) IsCodeAvailable(ctx context.Context, code string) (bool, error) {
	if code == "" || isReserved(strings.ToLower(code)) {
		return false, nil
	}

	exists, err := s.links.SlugExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("check link namespace: %w", err)
	}
	if exists {
		return false, nil
	}

	taken, err := s.profiles.UsernameExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("check username namespace: %w", err)
	}
	return !taken, nil
}

// Create claims a slug for a target URL. An empty slug requests a generated
// one.
func (s *Service) Create(ctx context.Context, profileID uuid.UUID, slug, targetURL string) (*models.ShortLink, error) {
	if err := validateTargetURL(targetURL); err != nil {
		return nil, err
	}

	if slug == "" {
		generated, err := s.generateSlug(ctx)
		if err != nil {
			return nil, err
		}
		slug = generated
	} else {
		available, err := s.IsCodeAvailable(ctx, slug)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, dErrors.New(dErrors.CodeBadRequest, "code is not available")
		}
	}

	link := &models.ShortLink{
		ID:        uuid.New(),
		Slug:      slug,
		TargetURL: targetURL,
		ProfileID: profileID,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race for the slug between the availability check
			// and the insert.
			return nil, dErrors.New(dErrors.CodeBadRequest, "code is not available")
		}
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

func (s *Service) generateSlug(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxGenAttempts; attempt++ {
		candidate, err := randomSlug(generatedLen)
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		available, err := s.IsCodeAvailable(ctx, candidate)
		if err != nil {
			return "", err
		}
		if available {
			return candidate, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInternal, "could not generate an available code")
}

func randomSlug(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = slugAlphabet[int(buf[i])%len(slugAlphabet)]
	}
	return string(buf), nil
}

func normalizeCode(code string) string {
	if strings.Contains(code, "%") {
		if decoded, err := url.PathUnescape(code); err == nil {
			return decoded
		}
	}
	return code
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return dErrors.New(dErrors.CodeBadRequest, "target URL must be absolute http(s)")
	}
	return nil
}
