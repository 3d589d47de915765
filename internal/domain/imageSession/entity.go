// internal/domain/imageSession/entity.go
package imageSession

import (
	"strings"
	"time"

	"tablenote/internal/domain/common"
)

var (
	ErrInvalidSession = common.Validationf("imageSession: invalid")

	// ErrNotFound はセッションまたは指定画像の不在。
	ErrNotFound = common.NotFoundf("imageSession: not found")

	// ErrImageNotFound はセッション内に該当 imageId が無い場合。
	ErrImageNotFound = common.NotFoundf("imageSession: image not found")

	// ErrTooManyImages は Kind ごとの上限超過。呼び出し側は直前に作った
	// temp オブジェクトを削除して補償する必要がある。
	ErrTooManyImages = common.Conflictf("imageSession: image limit reached")
)

// DefaultSessionTTL is the inactivity window after which the session becomes
// eligible for auto deletion (Firestore TTL should be configured on expiresAt).
// Every successful read/write refreshes it (sliding expiration).
const DefaultSessionTTL = 2 * time.Hour

// Kind selects the image cap for a staging session.
type Kind string

const (
	// KindReview is the ordinary review flow (cap 5).
	KindReview Kind = "REVIEW"
	// KindMenu is the bulk menu-submission variant (cap 20).
	KindMenu Kind = "MENU"
)

// MaxImages returns the cap for the kind. Unknown kinds fall back to the
// review cap.
func (k Kind) MaxImages() int {
	if k == KindMenu {
		return 20
	}
	return 5
}

// ParseKind normalizes a raw kind value ("" -> KindReview).
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", KindReview:
		return KindReview, nil
	case KindMenu:
		return KindMenu, nil
	}
	return "", common.Validationf("imageSession: unknown kind %q", raw)
}

// OwnerKey identifies a session by (userId, restaurantId).
type OwnerKey struct {
	UserID       string
	RestaurantID string
}

func NewOwnerKey(userID, restaurantID string) (OwnerKey, error) {
	k := OwnerKey{
		UserID:       strings.TrimSpace(userID),
		RestaurantID: strings.TrimSpace(restaurantID),
	}
	if k.UserID == "" || k.RestaurantID == "" {
		return OwnerKey{}, ErrInvalidSession
	}
	return k, nil
}

// DocID is the Firestore docId: {userId}__{restaurantId}.
func (k OwnerKey) DocID() string {
	return k.UserID + "__" + k.RestaurantID
}

// ImageDescriptor is one uploaded-but-uncommitted image.
// Order is a dense 1..N sequence; removals re-pack it.
type ImageDescriptor struct {
	ImageID       string `json:"imageId" firestore:"imageId"`
	TempKey       string `json:"tempKey" firestore:"tempKey"`
	URL           string `json:"url" firestore:"url"`
	FileSizeBytes int64  `json:"fileSizeBytes" firestore:"fileSizeBytes"`
	Order         int    `json:"order" firestore:"order"`
}

// Session represents "images uploaded so far" for one (user, restaurant).
//   - docId = {userId}__{restaurantId} (Firestore)
//   - ExpiresAt: for Firestore TTL, refreshed on every read/write
//
// NOTE:
// - 楽観ロックは持たない。同一キーへの同時 add/remove は read-modify-write の
//   競合で片方の更新が失われ得る（Repository 側に明記）。
type Session struct {
	ID     string `json:"id" firestore:"id"`
	Owner  OwnerKey
	Kind   Kind              `json:"kind" firestore:"kind"`
	Images []ImageDescriptor `json:"images" firestore:"images"`

	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt" firestore:"lastModifiedAt"`
	ExpiresAt      time.Time `json:"expiresAt" firestore:"expiresAt"`
}

// NewSession creates an empty session for the owner.
func NewSession(owner OwnerKey, kind Kind, now time.Time) *Session {
	return &Session{
		ID:             owner.DocID(),
		Owner:          owner,
		Kind:           kind,
		Images:         []ImageDescriptor{},
		CreatedAt:      now,
		LastModifiedAt: now,
		ExpiresAt:      now.Add(DefaultSessionTTL),
	}
}

// TryAdd appends the descriptor with order = len+1.
// Returns ErrTooManyImages when the kind's cap is already reached; the
// session is left unchanged in that case.
func (s *Session) TryAdd(d ImageDescriptor, now time.Time) error {
	if s == nil {
		return ErrInvalidSession
	}
	if strings.TrimSpace(d.ImageID) == "" || strings.TrimSpace(d.TempKey) == "" {
		return ErrInvalidSession
	}
	if len(s.Images) >= s.Kind.MaxImages() {
		return ErrTooManyImages
	}
	d.Order = len(s.Images) + 1
	s.Images = append(s.Images, d)
	s.touch(now)
	return nil
}

// Remove deletes the image and re-packs the remaining orders to a dense 1..N
// sequence preserving relative order. Returns the removed descriptor so the
// caller can delete its temp object.
func (s *Session) Remove(imageID string, now time.Time) (ImageDescriptor, error) {
	if s == nil {
		return ImageDescriptor{}, ErrInvalidSession
	}
	id := strings.TrimSpace(imageID)
	idx := -1
	for i, d := range s.Images {
		if d.ImageID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ImageDescriptor{}, ErrImageNotFound
	}
	removed := s.Images[idx]
	s.Images = append(s.Images[:idx], s.Images[idx+1:]...)
	for i := range s.Images {
		s.Images[i].Order = i + 1
	}
	s.touch(now)
	return removed, nil
}

// Find returns the descriptor for imageID (ok=false if absent).
func (s *Session) Find(imageID string) (ImageDescriptor, bool) {
	if s == nil {
		return ImageDescriptor{}, false
	}
	id := strings.TrimSpace(imageID)
	for _, d := range s.Images {
		if d.ImageID == id {
			return d, true
		}
	}
	return ImageDescriptor{}, false
}

// IsEmpty reports whether no images are staged.
func (s *Session) IsEmpty() bool {
	return s == nil || len(s.Images) == 0
}

// Touch refreshes LastModifiedAt/ExpiresAt (sliding TTL on read).
func (s *Session) Touch(now time.Time) {
	s.touch(now)
}

func (s *Session) touch(now time.Time) {
	s.LastModifiedAt = now
	s.ExpiresAt = now.Add(DefaultSessionTTL)
}
