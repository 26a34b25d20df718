package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

var (
	// errStore marks failures reported by the REST interface
	errStore = errors.New("database error")

	// errUnavailable replaces transport errors, which carry the store URL
	errUnavailable = fmt.Errorf("%w: database unavailable", errStore)
)

// Config holds the hosted database settings
type Config struct {
	URL     string
	Key     string
	Timeout time.Duration
}

// Store is the product store and user profile store backed by the hosted
// database's REST interface
type Store struct {
	http   *resty.Client
	logger zerolog.Logger
}

// NewStore creates a new REST-backed store
func NewStore(cfg Config, logger zerolog.Logger) *Store {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.URL+"/rest/v1").
		SetHeader("apikey", cfg.Key).
		SetAuthToken(cfg.Key).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Store{
		http:   client,
		logger: logger.With().Str("component", "supabase").Logger(),
	}
}

// Get returns the product stored under url, or domain.ErrProductNotFound
func (s *Store) Get(ctx context.Context, url string) (*domain.ProductRecord, error) {
	var rows []domain.ProductRecord
	var apiErr postgrestError
	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("url", "eq."+url).
		SetQueryParam("select", "*").
		SetResult(&rows).
		SetError(&apiErr).
		Get("/" + TableProducts)
	if err := s.check(res, err, &apiErr, "get product"); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return &rows[0], nil
}

// Insert stores a new product row
func (s *Store) Insert(ctx context.Context, record *domain.ProductRecord) error {
	var apiErr postgrestError
	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(record).
		SetError(&apiErr).
		Post("/" + TableProducts)
	return s.check(res, err, &apiErr, "insert product")
}

// Patch updates the product stored under url
func (s *Store) Patch(ctx context.Context, url string, patch domain.ProductPatch) error {
	var apiErr postgrestError
	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetQueryParam("url", "eq."+url).
		SetBody(MapPatchToBody(patch)).
		SetError(&apiErr).
		Patch("/" + TableProducts)
	return s.check(res, err, &apiErr, "patch product")
}

// GetUser returns the profile for id, or domain.ErrUserNotFound
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var rows []userProfileRow
	var apiErr postgrestError
	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		SetResult(&rows).
		SetError(&apiErr).
		Get("/" + TableUserProfiles)
	if err := s.check(res, err, &apiErr, "get user"); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return MapToUser(&rows[0]), nil
}

// FlagUser suspends the profile with a reason
func (s *Store) FlagUser(ctx context.Context, id string, reason string) error {
	var apiErr postgrestError
	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetQueryParam("id", "eq."+id).
		SetBody(map[string]any{"is_flagged": true, "flagged_reason": reason}).
		SetError(&apiErr).
		Patch("/" + TableUserProfiles)
	return s.check(res, err, &apiErr, "flag user")
}

// IncrementScanUsage records one scan and returns the scans remaining afterwards
func (s *Store) IncrementScanUsage(ctx context.Context, id string) (int, error) {
	var rows []scanUsageRow
	var apiErr postgrestError
	res, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"p_user_id": id}).
		SetResult(&rows).
		SetError(&apiErr).
		Post("/rpc/" + RPCIncrementScans)
	if err := s.check(res, err, &apiErr, "increment scan usage"); err != nil {
		return 0, err
	}

	if len(rows) == 0 || rows[0].ScansRemaining == nil {
		return 0, nil
	}
	return *rows[0].ScansRemaining, nil
}

// check turns transport failures and error statuses into errors carrying the store's detail
func (s *Store) check(res *resty.Response, err error, apiErr *postgrestError, op string) error {
	if err != nil {
		s.logger.Error().Err(err).Str("op", op).Msg("request failed")
		return errUnavailable
	}
	if res.IsError() {
		detail := apiErr.Detail()
		if detail == "" {
			detail = res.Status()
		}
		s.logger.Error().Int("status", res.StatusCode()).Str("op", op).Str("detail", detail).Msg("store returned an error")
		return fmt.Errorf("%w: %s", errStore, detail)
	}
	return nil
}
