// internal/domain/imageSession/repository_port.go
package imageSession

import "context"

// Repository is a persistence port for staging sessions.
//
// Storage recommendation (Firestore):
// - collection: imageSessions
// - docId: {userId}__{restaurantId}
// - fields: id, kind, images(array), createdAt, lastModifiedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on the "expiresAt" field.
// - Every successful Get must refresh expiresAt (sliding expiration).
//
// Concurrency:
// - Mutations are read-modify-write with no compare-and-swap; two concurrent
//   uploads for the same owner can race and lose an update. The port takes
//   whole-session saves so a Firestore-transaction implementation can be
//   swapped in without caller changes.
type Repository interface {
	// Get returns the session for the owner.
	// Not-found and corrupt (undecodable) docs both return (nil, nil);
	// corrupt docs are purged.
	Get(ctx context.Context, owner OwnerKey) (*Session, error)

	// Save overwrites the whole session doc.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session doc. Deleting an absent doc is not an error.
	Delete(ctx context.Context, owner OwnerKey) error
}
