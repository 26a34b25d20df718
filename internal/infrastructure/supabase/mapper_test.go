package supabase

import (
	"testing"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

func TestMapToUser(t *testing.T) {
	reason := "Exceeded daily scan limit (20 scans in one day)"

	tests := []struct {
		name string
		row  *userProfileRow
		want domain.User
	}{
		{
			name: "complete profile",
			row: &userProfileRow{
				ID:               "u-1",
				Email:            "a@example.com",
				SubscriptionTier: "premium",
				ScansRemaining:   40,
				ScansUsedToday:   3,
			},
			want: domain.User{
				ID:               "u-1",
				Email:            "a@example.com",
				SubscriptionTier: "premium",
				ScansRemaining:   40,
				ScansUsedToday:   3,
			},
		},
		{
			name: "missing tier defaults to free",
			row:  &userProfileRow{ID: "u-2"},
			want: domain.User{ID: "u-2", SubscriptionTier: "free"},
		},
		{
			name: "flagged with reason",
			row:  &userProfileRow{ID: "u-3", SubscriptionTier: "free", IsFlagged: true, FlaggedReason: &reason},
			want: domain.User{ID: "u-3", SubscriptionTier: "free", IsFlagged: true, FlaggedReason: reason},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToUser(tt.row)
			if *got != tt.want {
				t.Errorf("MapToUser() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestMapPatchToBody(t *testing.T) {
	t.Run("count only", func(t *testing.T) {
		body := MapPatchToBody(domain.ProductPatch{CheckCount: 4})
		if len(body) != 1 {
			t.Fatalf("expected only check_count, got %v", body)
		}
		if body["check_count"] != 4 {
			t.Errorf("check_count = %v, want 4", body["check_count"])
		}
	})

	t.Run("with composition", func(t *testing.T) {
		body := MapPatchToBody(domain.ProductPatch{
			CheckCount: 2,
			Composition: &domain.ProductRecord{
				Title:            "Tee",
				Fibers:           []domain.FiberEntry{{Name: "cotton", Percentage: 100}},
				CompositionGrade: domain.GradeNatural,
			},
		})

		for _, key := range []string{"check_count", "fibers", "lining", "trim", "composition_grade", "title", "brand", "raw_text"} {
			if _, ok := body[key]; !ok {
				t.Errorf("missing key %q", key)
			}
		}
		if _, ok := body["url"]; ok {
			t.Error("url must never be patched")
		}
		if body["composition_grade"] != domain.GradeNatural {
			t.Errorf("composition_grade = %v", body["composition_grade"])
		}
	})
}

func TestPostgrestErrorDetail(t *testing.T) {
	tests := []struct {
		err  postgrestError
		want string
	}{
		{postgrestError{Message: "duplicate key", Hint: "h", Code: "23505"}, "duplicate key"},
		{postgrestError{Hint: "check the column", Code: "42703"}, "check the column"},
		{postgrestError{Details: "row missing"}, "row missing"},
		{postgrestError{Code: "PGRST116"}, "PGRST116"},
		{postgrestError{}, ""},
	}

	for _, tt := range tests {
		if got := tt.err.Detail(); got != tt.want {
			t.Errorf("Detail() = %q, want %q", got, tt.want)
		}
	}
}
