package review

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tablenote/internal/domain/common"
	"tablenote/internal/domain/imageSession"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func validSubmission() Submission {
	return Submission{
		RestaurantID: "rest-1",
		Content:      "great lunch",
		Images: []ImageRequest{
			{ImageID: "img-1", Order: 1, IsMain: true},
			{ImageID: "img-2", Order: 2},
		},
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Submission)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*Submission) {},
		},
		{
			name: "no images",
			mutate: func(s *Submission) {
				s.Images = nil
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "no main image",
			mutate: func(s *Submission) {
				s.Images[0].IsMain = false
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "two main images",
			mutate: func(s *Submission) {
				s.Images[1].IsMain = true
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "duplicate order",
			mutate: func(s *Submission) {
				s.Images[1].Order = 1
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "food tooltip without menuName",
			mutate: func(s *Submission) {
				s.Images[0].Tooltips = []Tooltip{
					{Type: TooltipFood, Rating: 4, TotalPrice: intPtr(1200)},
				}
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "food tooltip without totalPrice",
			mutate: func(s *Submission) {
				s.Images[0].Tooltips = []Tooltip{
					{Type: TooltipFood, Rating: 4, MenuName: strPtr("carbonara")},
				}
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "service tooltip carrying menu fields",
			mutate: func(s *Submission) {
				s.Images[0].Tooltips = []Tooltip{
					{Type: TooltipService, Rating: 5, MenuName: strPtr("carbonara")},
				}
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "unknown tooltip type",
			mutate: func(s *Submission) {
				s.Images[0].Tooltips = []Tooltip{{Type: "PRICE", Rating: 3}}
			},
			wantErr: common.ErrValidation,
		},
		{
			name: "valid tooltips of every type",
			mutate: func(s *Submission) {
				s.Images[0].Tooltips = []Tooltip{
					NewFoodTooltip(0.2, 0.3, 5, "carbonara", 1200, strPtr("regular"), nil),
					NewServiceTooltip(0.5, 0.5, 4, nil),
					NewCleanTooltip(0.9, 0.1, 5, strPtr("spotless")),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			err := ValidateSubmission(sub)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Check order is fixed: a submission with both a cardinality violation and a
// duplicate order must fail on cardinality first.
func TestValidateSubmissionFailsFastOnCardinality(t *testing.T) {
	sub := Submission{
		RestaurantID: "rest-1",
		Images: []ImageRequest{
			{ImageID: "img-1", Order: 1},
			{ImageID: "img-2", Order: 1},
		},
	}
	err := ValidateSubmission(sub)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, common.ErrValidation) || !strings.Contains(err.Error(), "main image") {
		t.Fatalf("expected main-image error first, got %v", err)
	}
}

func TestValidateAgainstSession(t *testing.T) {
	now := time.Now().UTC()
	owner, _ := imageSession.NewOwnerKey("user-1", "rest-1")
	sess := imageSession.NewSession(owner, imageSession.KindReview, now)
	for _, id := range []string{"img-1", "img-2"} {
		if err := sess.TryAdd(imageSession.ImageDescriptor{ImageID: id, TempKey: "temp/" + id + ".jpg"}, now); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := ValidateAgainstSession(validSubmission(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub := validSubmission()
	sub.Images[1].ImageID = "img-unknown"
	if err := ValidateAgainstSession(sub, sess); !errors.Is(err, imageSession.ErrImageNotFound) {
		t.Fatalf("got %v, want ErrImageNotFound", err)
	}

	if err := ValidateAgainstSession(validSubmission(), nil); !errors.Is(err, imageSession.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for missing session", err)
	}
	empty := imageSession.NewSession(owner, imageSession.KindReview, now)
	if err := ValidateAgainstSession(validSubmission(), empty); !errors.Is(err, imageSession.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for empty session", err)
	}
}
