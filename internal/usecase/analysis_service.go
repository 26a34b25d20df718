package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL          time.Duration
	DailyLimitFree    int
	DailyLimitPremium int
}

// AnalysisService runs the quota checks and the extraction pipeline for one scan
type AnalysisService struct {
	users             domain.UserStore
	extractor         domain.Extractor
	cache             domain.CacheRepository
	classifier        *SectionClassifier
	cacheTTL          time.Duration
	dailyLimitFree    int
	dailyLimitPremium int
	logger            zerolog.Logger
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	users domain.UserStore,
	extractor domain.Extractor,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
	logger zerolog.Logger,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 168 * time.Hour // Default 7 days
	}
	dailyFree := config.DailyLimitFree
	if dailyFree <= 0 {
		dailyFree = 20
	}
	dailyPremium := config.DailyLimitPremium
	if dailyPremium <= 0 {
		dailyPremium = 50
	}

	return &AnalysisService{
		users:             users,
		extractor:         extractor,
		cache:             cache,
		classifier:        NewSectionClassifier(logger),
		cacheTTL:          cacheTTL,
		dailyLimitFree:    dailyFree,
		dailyLimitPremium: dailyPremium,
		logger:            logger.With().Str("component", "analysis").Logger(),
	}
}

// Analyze extracts and grades the composition in text on behalf of user.
// Flow: validate text -> quota -> record usage -> cache -> extract -> parse -> classify -> cache
func (s *AnalysisService) Analyze(ctx context.Context, user *domain.User, text string) (*domain.AnalysisResult, error) {
	req, err := BuildExtractionRequest(text)
	if err != nil {
		return nil, err
	}

	if err := s.checkQuota(ctx, user); err != nil {
		return nil, err
	}

	remaining, err := s.users.IncrementScanUsage(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to increment scan usage")
		return nil, fmt.Errorf("%w: %v", domain.ErrScanTracking, err)
	}

	result := &domain.AnalysisResult{
		ScansRemaining:   remaining,
		SubscriptionTier: user.SubscriptionTier,
	}

	cacheKey := analysisCacheKey(req.UserText)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		result.CompositionRecord = *cached
		result.Cached = true
		return result, nil
	}

	s.logger.Debug().
		Int("text_length", len(req.UserText)).
		Str("preview", truncateRunes(req.UserText, 200)).
		Msg("extracting composition")

	raw, err := s.extractor.Extract(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrProvider) && !errors.Is(err, domain.ErrRateLimited) {
			err = fmt.Errorf("%w: %v", domain.ErrProvider, err)
		}
		return nil, err
	}

	parsed, err := ParseExtraction(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("output", truncateRunes(raw, 200)).Msg("malformed extraction output")
		return nil, err
	}

	record := s.classifier.Classify(parsed)
	result.CompositionRecord = *record

	if err := s.setInCache(ctx, cacheKey, record); err != nil {
		// Caching is best effort
		s.logger.Warn().Err(err).Msg("failed to cache analysis")
	}

	return result, nil
}

// checkQuota enforces suspension, the scan allowance and the daily abuse threshold.
// Reaching the daily threshold flags the profile.
func (s *AnalysisService) checkQuota(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.IsFlagged {
		return domain.ErrAccountSuspended
	}
	if user.ScansRemaining <= 0 {
		return domain.ErrNoScansRemaining
	}

	if user.ScansUsedToday >= s.DailyLimit(user) {
		reason := fmt.Sprintf("Exceeded daily scan limit (%d scans in one day)", user.ScansUsedToday)
		if err := s.users.FlagUser(ctx, user.ID, reason); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to flag user")
		} else {
			s.logger.Warn().Str("user_id", user.ID).Int("scans_used_today", user.ScansUsedToday).Msg("user flagged")
		}
		return domain.ErrDailyLimitExceeded
	}

	return nil
}

// DailyLimit returns the abuse threshold for the user's tier
func (s *AnalysisService) DailyLimit(user *domain.User) int {
	if user.IsPremium() {
		return s.dailyLimitPremium
	}
	return s.dailyLimitFree
}

// analysisCacheKey keys cached records by the exact text that was extracted.
// Format: "analysis:{sha256 hex}"
func analysisCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "analysis:" + hex.EncodeToString(sum[:])
}

func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.CompositionRecord, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var record domain.CompositionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &record, nil
}

func (s *AnalysisService) setInCache(ctx context.Context, key string, record *domain.CompositionRecord) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
