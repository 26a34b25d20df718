package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/internal/domain"
	"github.com/sana-a-khan/fabrix/internal/infrastructure/htmltext"
	"github.com/sana-a-khan/fabrix/internal/observability"
	"github.com/sana-a-khan/fabrix/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysis *usecase.AnalysisService
	products *usecase.ProductService
	selector *usecase.CandidateSelector
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler. A nil service answers 503 on its routes.
func NewHandler(
	analysis *usecase.AnalysisService,
	products *usecase.ProductService,
	selector *usecase.CandidateSelector,
	logger zerolog.Logger,
) *Handler {
	if selector == nil {
		selector = usecase.NewCandidateSelector()
	}
	return &Handler{
		analysis: analysis,
		products: products,
		selector: selector,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type candidatesRequest struct {
	Blocks []string `json:"blocks"`
	HTML   string   `json:"html"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fabrix-backend",
		"version": Version,
	})
}

// Analyze extracts and grades the composition in the posted text
func (h *Handler) Analyze(c *gin.Context) {
	if h.analysis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analysis service not configured"})
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	user := CurrentUser(c)
	result, err := h.analysis.Analyze(c.Request.Context(), user, req.Text)
	if err != nil {
		h.respondError(c, err, user)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SaveProduct validates and upserts a product record
func (h *Handler) SaveProduct(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Product store not configured"})
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		h.respondBindError(c, err)
		return
	}
	input, err := usecase.DecodeProduct(data)
	if err != nil {
		h.respondBindError(c, err)
		return
	}

	result, err := h.products.SaveInput(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	if !result.AlreadyExists {
		c.JSON(http.StatusCreated, gin.H{
			"message":       "Saved successfully!",
			"alreadyExists": false,
			"checkCount":    result.CheckCount,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Already in library!",
		"alreadyExists":      true,
		"checkCount":         result.CheckCount,
		"compositionChanged": result.CompositionChanged,
	})
}

// SelectCandidates ranks posted blocks, or the blocks of posted HTML
func (h *Handler) SelectCandidates(c *gin.Context) {
	var req candidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	blocks := req.Blocks
	if strings.TrimSpace(req.HTML) != "" {
		parsed, err := htmltext.BlocksFromString(req.HTML)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "html could not be parsed"})
			return
		}
		blocks = append(blocks, parsed...)
	}
	if len(blocks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blocks or html required"})
		return
	}

	c.JSON(http.StatusOK, h.selector.Select(blocks))
}

// Me returns the authenticated profile
func (h *Handler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":                user.ID,
			"email":             user.Email,
			"subscription_tier": user.SubscriptionTier,
			"scans_remaining":   user.ScansRemaining,
			"scans_used_today":  user.ScansUsedToday,
		},
	})
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}

// respondError maps domain errors to status codes. Bodies always carry "error".
func (h *Handler) respondError(c *gin.Context, err error, user *domain.User) {
	logger := observability.FromContext(c.Request.Context(), h.logger)

	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed: " + strings.Join(validationErr.Problems, ", "),
			"details": validationErr.Problems,
		})

	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})

	case errors.Is(err, domain.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})

	case errors.Is(err, domain.ErrNoScansRemaining):
		body := gin.H{"error": "No scans remaining", "scans_remaining": 0}
		if user != nil {
			body["subscription_tier"] = user.SubscriptionTier
			if user.IsPremium() {
				body["message"] = "Monthly scan limit reached. Resets on the 1st of next month."
			} else {
				body["message"] = "Upgrade to premium for 100 scans per month"
			}
		}
		c.JSON(http.StatusForbidden, body)

	case errors.Is(err, domain.ErrDailyLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Daily scan limit exceeded",
			"message": "Your account has been flagged for unusual activity. Please contact support.",
		})

	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later."})

	case errors.Is(err, domain.ErrMalformedExtraction):
		logger.Warn().Err(err).Msg("malformed extraction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid AI response format"})

	case errors.Is(err, domain.ErrProvider):
		logger.Error().Err(err).Msg("extraction provider failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrPersistence):
		logger.Error().Err(err).Msg("persistence failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrScanTracking):
		logger.Error().Err(err).Msg("scan tracking failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track scan usage"})

	default:
		logger.Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
