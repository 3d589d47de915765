// internal/domain/review/validate.go
package review

import (
	"strings"

	"tablenote/internal/domain/common"
	"tablenote/internal/domain/imageSession"
)

// ValidateSubmission runs the pure structural checks in fixed order,
// failing fast on the first violation:
//
//  1. main-image cardinality (exactly one isMain=true)
//  2. order uniqueness
//  3. tooltip shape per variant
//
// No store is touched here. Session completeness (check 4) runs separately
// via ValidateAgainstSession once the caller has fetched the session.
func ValidateSubmission(sub Submission) error {
	if len(sub.Images) == 0 {
		return common.Validationf("review: no images submitted")
	}

	// 1. main-image cardinality
	mains := 0
	for _, img := range sub.Images {
		if img.IsMain {
			mains++
		}
	}
	switch {
	case mains == 0:
		return common.Validationf("review: no main image selected")
	case mains > 1:
		return common.Validationf("review: only one main image allowed")
	}

	// 2. order uniqueness
	seen := make(map[int]struct{}, len(sub.Images))
	for _, img := range sub.Images {
		if _, dup := seen[img.Order]; dup {
			return common.Validationf("review: duplicate image order %d", img.Order)
		}
		seen[img.Order] = struct{}{}
	}

	// 3. tooltip shape
	for _, img := range sub.Images {
		for _, tp := range img.Tooltips {
			if err := validateTooltip(tp); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateAgainstSession is check 4: every submitted imageId must be staged
// in the caller's current session. Any miss aborts with not-found before the
// relational store is touched.
func ValidateAgainstSession(sub Submission, sess *imageSession.Session) error {
	if sess.IsEmpty() {
		return imageSession.ErrNotFound
	}
	for _, img := range sub.Images {
		if _, ok := sess.Find(img.ImageID); !ok {
			return imageSession.ErrImageNotFound
		}
	}
	return nil
}

func validateTooltip(tp Tooltip) error {
	switch tp.Type {
	case TooltipFood:
		if !hasText(tp.MenuName) {
			return common.Validationf("review: FOOD tooltip requires menuName")
		}
		if tp.TotalPrice == nil {
			return common.Validationf("review: FOOD tooltip requires totalPrice")
		}
	case TooltipService, TooltipClean:
		if tp.MenuName != nil || tp.TotalPrice != nil || tp.ServingSize != nil {
			return common.Validationf("review: %s tooltip must not carry menu fields", tp.Type)
		}
	default:
		return common.Validationf("review: unknown tooltip type %q", tp.Type)
	}
	return nil
}

func hasText(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}
