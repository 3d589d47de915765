// internal/adapters/out/firestore/imageSession_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	sessdom "tablenote/internal/domain/imageSession"
)

// ImageSessionRepositoryFS implements imageSession.Repository using Firestore.
//
// Collection design:
// - collection: imageSessions
// - docId: {userId}__{restaurantId}  ✅ (docId is the source of truth)
// - fields: userId, restaurantId, kind, images(array), createdAt,
//   lastModifiedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
// - Every successful Get re-saves the doc with a refreshed expiresAt
//   (sliding expiration).
//
// Concurrency:
// - No compare-and-swap: Get→mutate→Save can lose one of two concurrent
//   updates for the same owner. Accepted and documented at the port.
type ImageSessionRepositoryFS struct {
	Client *firestore.Client
}

func NewImageSessionRepositoryFS(client *firestore.Client) *ImageSessionRepositoryFS {
	return &ImageSessionRepositoryFS{Client: client}
}

func (r *ImageSessionRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("imageSessions")
}

// sessionDoc is the Firestore document shape.
type sessionDoc struct {
	UserID         string                    `firestore:"userId"`
	RestaurantID   string                    `firestore:"restaurantId"`
	Kind           string                    `firestore:"kind"`
	Images         []sessdom.ImageDescriptor `firestore:"images"`
	CreatedAt      time.Time                 `firestore:"createdAt"`
	LastModifiedAt time.Time                 `firestore:"lastModifiedAt"`
	ExpiresAt      time.Time                 `firestore:"expiresAt"`
}

// Get returns (nil, nil) if absent. Corrupt docs (schema drift, undecodable)
// are treated as absent and purged so the client can restart the session.
func (r *ImageSessionRepositoryFS) Get(ctx context.Context, owner sessdom.OwnerKey) (*sessdom.Session, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("imageSession_repository_fs: firestore client is nil")
	}
	docID := strings.TrimSpace(owner.DocID())
	if docID == "__" || docID == "" {
		return nil, errors.New("imageSession_repository_fs: owner key is empty")
	}

	snap, err := r.col().Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		// 壊れた doc は不在扱いで purge する（500 を作らない）
		log.Printf("[imageSession.fs] WARN: corrupt session doc %s, purging: %v", docID, err)
		if _, derr := r.col().Doc(docID).Delete(ctx); derr != nil {
			log.Printf("[imageSession.fs] WARN: purge failed for %s: %v", docID, derr)
		}
		return nil, nil
	}

	kind, err := sessdom.ParseKind(doc.Kind)
	if err != nil {
		kind = sessdom.KindReview
	}
	s := &sessdom.Session{
		ID:             docID,
		Owner:          owner,
		Kind:           kind,
		Images:         doc.Images,
		CreatedAt:      doc.CreatedAt,
		LastModifiedAt: doc.LastModifiedAt,
		ExpiresAt:      doc.ExpiresAt,
	}
	if s.Images == nil {
		s.Images = []sessdom.ImageDescriptor{}
	}

	// Sliding expiration: refresh TTL on every successful read.
	s.Touch(time.Now().UTC())
	if err := r.Save(ctx, s); err != nil {
		log.Printf("[imageSession.fs] WARN: ttl refresh failed for %s: %v", docID, err)
	}
	return s, nil
}

// Save overwrites the full doc (simple & predictable).
func (r *ImageSessionRepositoryFS) Save(ctx context.Context, s *sessdom.Session) error {
	if r == nil || r.Client == nil {
		return errors.New("imageSession_repository_fs: firestore client is nil")
	}
	if s == nil {
		return errors.New("imageSession_repository_fs: session is nil")
	}
	docID := strings.TrimSpace(s.Owner.DocID())
	if docID == "__" || docID == "" {
		return errors.New("imageSession_repository_fs: session owner key is empty")
	}

	doc := sessionDoc{
		UserID:         s.Owner.UserID,
		RestaurantID:   s.Owner.RestaurantID,
		Kind:           string(s.Kind),
		Images:         s.Images,
		CreatedAt:      s.CreatedAt,
		LastModifiedAt: s.LastModifiedAt,
		ExpiresAt:      s.ExpiresAt,
	}
	if doc.Images == nil {
		doc.Images = []sessdom.ImageDescriptor{}
	}
	_, err := r.col().Doc(docID).Set(ctx, doc)
	return err
}

// Delete removes the doc. Deleting an absent doc is not an error
// (Firestore Delete is a no-op for missing docs).
func (r *ImageSessionRepositoryFS) Delete(ctx context.Context, owner sessdom.OwnerKey) error {
	if r == nil || r.Client == nil {
		return errors.New("imageSession_repository_fs: firestore client is nil")
	}
	docID := strings.TrimSpace(owner.DocID())
	if docID == "__" || docID == "" {
		return errors.New("imageSession_repository_fs: owner key is empty")
	}
	_, err := r.col().Doc(docID).Delete(ctx)
	return err
}
