package domain

// ProductRecord is the persisted product keyed by URL.
// Field names are the stable wire contract of the record store.
type ProductRecord struct {
	URL              string       `json:"url" bson:"url"`
	Title            string       `json:"title" bson:"title"`
	Brand            string       `json:"brand" bson:"brand"`
	CompositionGrade Grade        `json:"composition_grade" bson:"composition_grade"`
	Fibers           []FiberEntry `json:"fibers" bson:"fibers"`
	Lining           []FiberEntry `json:"lining" bson:"lining"`
	Trim             []FiberEntry `json:"trim" bson:"trim"`
	RawText          string       `json:"raw_text" bson:"raw_text"`
	CheckCount       int          `json:"check_count" bson:"check_count"`
}

// ProductPatch is a partial update of a stored product.
// Composition is nil when only the check count changes.
type ProductPatch struct {
	CheckCount  int
	Composition *ProductRecord
}

// SaveResult reports what an upsert did
type SaveResult struct {
	AlreadyExists      bool `json:"alreadyExists"`
	CheckCount         int  `json:"checkCount"`
	CompositionChanged bool `json:"compositionChanged"`
}

// User is the authenticated caller as supplied by the profile store
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscription_tier"`
	ScansRemaining   int    `json:"scans_remaining"`
	ScansUsedToday   int    `json:"scans_used_today"`
	IsFlagged        bool   `json:"is_flagged"`
	FlaggedReason    string `json:"flagged_reason,omitempty"`
}

// TierPremium is the paid subscription tier; anything else is treated as free
const TierPremium = "premium"

// IsPremium reports whether the user is on the paid tier
func (u *User) IsPremium() bool {
	return u != nil && u.SubscriptionTier == TierPremium
}
