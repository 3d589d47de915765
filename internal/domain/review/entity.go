// internal/domain/review/entity.go
package review

import (
	"strings"
	"time"

	"tablenote/internal/domain/common"
	"tablenote/internal/domain/keyword"
)

// ErrNotFound は対象レビュー不在。
var ErrNotFound = common.NotFoundf("review: not found")

// MediaStatus は画像移行の進行状態です。
// レビュー行は temp URL のまま先に永続化されるため、移行完了までは
// PENDING として読み手に区別させます（silently-stale な temp URL を避ける）。
type MediaStatus string

const (
	MediaPending MediaStatus = "PENDING"
	MediaReady   MediaStatus = "READY"
)

// TooltipType は画像上の注釈種別です。
type TooltipType string

const (
	TooltipFood    TooltipType = "FOOD"
	TooltipService TooltipType = "SERVICE"
	TooltipClean   TooltipType = "CLEAN"
)

// Tooltip is a positioned annotation on a review image.
//
// Variant rule (enforced by Validate):
// - FOOD: menuName / totalPrice required, servingSize optional
// - SERVICE, CLEAN: menuName / totalPrice / servingSize must all be absent
//
// Go には直和型が無いため、種別 + optional pointer + variant コンストラクタ +
// exhaustive switch で表現する。
type Tooltip struct {
	Type      TooltipType `json:"type"`
	XPosition float64     `json:"xPosition"`
	YPosition float64     `json:"yPosition"`
	Rating    int         `json:"rating"`

	// FOOD variant only
	MenuName    *string `json:"menuName,omitempty"`
	TotalPrice  *int    `json:"totalPrice,omitempty"`
	ServingSize *string `json:"servingSize,omitempty"`

	Note *string `json:"note,omitempty"`
}

// NewFoodTooltip builds the FOOD variant.
func NewFoodTooltip(x, y float64, rating int, menuName string, totalPrice int, servingSize, note *string) Tooltip {
	mn := strings.TrimSpace(menuName)
	return Tooltip{
		Type:        TooltipFood,
		XPosition:   x,
		YPosition:   y,
		Rating:      rating,
		MenuName:    &mn,
		TotalPrice:  &totalPrice,
		ServingSize: servingSize,
		Note:        note,
	}
}

// NewServiceTooltip builds the SERVICE variant.
func NewServiceTooltip(x, y float64, rating int, note *string) Tooltip {
	return Tooltip{Type: TooltipService, XPosition: x, YPosition: y, Rating: rating, Note: note}
}

// NewCleanTooltip builds the CLEAN variant.
func NewCleanTooltip(x, y float64, rating int, note *string) Tooltip {
	return Tooltip{Type: TooltipClean, XPosition: x, YPosition: y, Rating: rating, Note: note}
}

// ReviewImage is one persisted image of a committed review.
// URL starts as the temp URL and is rewritten in place after migration.
type ReviewImage struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Order    int       `json:"order"`
	IsMain   bool      `json:"isMain"`
	Tooltips []Tooltip `json:"tooltips"`
}

// Review is the persisted aggregate. It owns its images and keywords
// (cascade create/delete); each image owns its tooltips.
type Review struct {
	ID           string            `json:"id"`
	AuthorID     string            `json:"authorId"`
	RestaurantID string            `json:"restaurantId"`
	Content      string            `json:"content"`
	MediaStatus  MediaStatus       `json:"mediaStatus"`
	Images       []ReviewImage     `json:"images"`
	Keywords     []keyword.Keyword `json:"keywords"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// ImageRequest is one submitted image reference (must exist in the session).
type ImageRequest struct {
	ImageID  string    `json:"imageId"`
	Order    int       `json:"order"`
	IsMain   bool      `json:"isMain"`
	Tooltips []Tooltip `json:"tooltips"`
}

// Submission is the client input for committing one review.
type Submission struct {
	RestaurantID string         `json:"restaurantId"`
	Content      string         `json:"content"`
	Images       []ImageRequest `json:"images"`
	Keywords     []string       `json:"keywords"`
}
