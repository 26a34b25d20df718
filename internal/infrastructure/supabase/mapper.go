package supabase

import (
	"github.com/sana-a-khan/fabrix/internal/domain"
)

// Table and column names of the hosted schema
const (
	TableProducts     = "products"
	TableUserProfiles = "user_profiles"
	RPCIncrementScans = "increment_scan_usage"
)

// userProfileRow is a row of the user_profiles table
type userProfileRow struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	SubscriptionTier string  `json:"subscription_tier"`
	ScansRemaining   int     `json:"scans_remaining"`
	ScansUsedToday   int     `json:"scans_used_today"`
	IsFlagged        bool    `json:"is_flagged"`
	FlaggedReason    *string `json:"flagged_reason"`
}

// scanUsageRow is one row returned by the increment_scan_usage function
type scanUsageRow struct {
	ScansRemaining *int `json:"scans_remaining"`
}

// postgrestError is the error body PostgREST answers with
type postgrestError struct {
	Message string `json:"message"`
	Hint    string `json:"hint"`
	Details string `json:"details"`
	Code    string `json:"code"`
}

// Detail returns the most specific text PostgREST supplied
func (e *postgrestError) Detail() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Hint != "":
		return e.Hint
	case e.Details != "":
		return e.Details
	default:
		return e.Code
	}
}

// MapToUser converts a profile row to the domain user
func MapToUser(row *userProfileRow) *domain.User {
	user := &domain.User{
		ID:               row.ID,
		Email:            row.Email,
		SubscriptionTier: row.SubscriptionTier,
		ScansRemaining:   row.ScansRemaining,
		ScansUsedToday:   row.ScansUsedToday,
		IsFlagged:        row.IsFlagged,
	}
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = "free"
	}
	if row.FlaggedReason != nil {
		user.FlaggedReason = *row.FlaggedReason
	}
	return user
}

// MapPatchToBody builds the PATCH body for a product. Composition fields are
// only included when the patch carries them.
func MapPatchToBody(patch domain.ProductPatch) map[string]any {
	body := map[string]any{"check_count": patch.CheckCount}
	if c := patch.Composition; c != nil {
		body["fibers"] = c.Fibers
		body["lining"] = c.Lining
		body["trim"] = c.Trim
		body["composition_grade"] = c.CompositionGrade
		body["title"] = c.Title
		body["brand"] = c.Brand
		body["raw_text"] = c.RawText
	}
	return body
}
