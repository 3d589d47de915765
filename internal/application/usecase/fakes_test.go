package usecase

import (
	"context"
	"errors"
	"fmt"

	sessdom "tablenote/internal/domain/imageSession"
	restdom "tablenote/internal/domain/restaurant"
	revdom "tablenote/internal/domain/review"
	imgdom "tablenote/internal/domain/reviewImage"
)

// ---- session repository fake ----

type fakeSessionRepo struct {
	sessions  map[string]*sessdom.Session
	getErr    error
	saveErr   error
	deleteErr error
	deleted   []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*sessdom.Session{}}
}

func (r *fakeSessionRepo) Get(_ context.Context, owner sessdom.OwnerKey) (*sessdom.Session, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.sessions[owner.DocID()]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Images = append([]sessdom.ImageDescriptor(nil), s.Images...)
	return &cp, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, s *sessdom.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	cp.Images = append([]sessdom.ImageDescriptor(nil), s.Images...)
	r.sessions[s.Owner.DocID()] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, owner sessdom.OwnerKey) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, owner.DocID())
	r.deleted = append(r.deleted, owner.DocID())
	return nil
}

// ---- object storage fake ----

type fakeStorage struct {
	objects map[string][]byte

	uploads   int
	copyCalls int
	// 1-based call index at which Copy fails (0 = never)
	failCopyAt int
	// 1-based call index at which Delete fails (0 = never)
	failDeleteAt int
	deleteCalls  int

	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) UploadTemp(_ context.Context, userID, restaurantID, fileName, contentType string, data []byte) (imgdom.UploadedImage, error) {
	if err := imgdom.ValidateUpload(data, contentType, fileName); err != nil {
		return imgdom.UploadedImage{}, err
	}
	s.uploads++
	imageID := fmt.Sprintf("img-%d", s.uploads)
	tempKey := imgdom.BuildTempKey(userID, restaurantID, imageID, imgdom.Extension(fileName))
	s.objects[tempKey] = data
	return imgdom.UploadedImage{
		ImageID:       imageID,
		TempKey:       tempKey,
		URL:           s.PublicURL(tempKey),
		FileSizeBytes: int64(len(data)),
	}, nil
}

func (s *fakeStorage) Copy(_ context.Context, srcKey, destKey string) error {
	s.copyCalls++
	if s.failCopyAt != 0 && s.copyCalls == s.failCopyAt {
		return errors.New("copy blew up")
	}
	data, ok := s.objects[srcKey]
	if !ok {
		return fmt.Errorf("source %s does not exist", srcKey)
	}
	s.objects[destKey] = data
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.deleteCalls++
	if s.failDeleteAt != 0 && s.deleteCalls == s.failDeleteAt {
		return errors.New("delete blew up")
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) PublicURL(objectPath string) string {
	return "https://cdn.test/" + objectPath
}

func (s *fakeStorage) has(key string) bool {
	_, ok := s.objects[key]
	return ok
}

// ---- restaurant reader fake ----

type fakeRestaurants struct {
	byID map[string]restdom.Restaurant
}

func newFakeRestaurants(ids ...string) *fakeRestaurants {
	m := map[string]restdom.Restaurant{}
	for _, id := range ids {
		m[id] = restdom.Restaurant{ID: id, Name: "restaurant " + id}
	}
	return &fakeRestaurants{byID: m}
}

func (r *fakeRestaurants) FindByID(_ context.Context, id string) (restdom.Restaurant, error) {
	rest, ok := r.byID[id]
	if !ok {
		return restdom.Restaurant{}, restdom.ErrNotFound
	}
	return rest, nil
}

// ---- review repository fake ----

type fakeReviewRepo struct {
	created map[string]revdom.Review

	createErr error
	// 1-based call index at which UpdateImageURL fails (0 = never)
	failUpdateAt int
	updateCalls  int
	readyErr     error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{created: map[string]revdom.Review{}}
}

func (r *fakeReviewRepo) Create(_ context.Context, rv revdom.Review) (revdom.Review, error) {
	if r.createErr != nil {
		return revdom.Review{}, r.createErr
	}
	r.created[rv.ID] = rv
	return rv, nil
}

func (r *fakeReviewRepo) GetByID(_ context.Context, id string) (revdom.Review, error) {
	rv, ok := r.created[id]
	if !ok {
		return revdom.Review{}, revdom.ErrNotFound
	}
	return rv, nil
}

func (r *fakeReviewRepo) UpdateImageURL(_ context.Context, reviewID, imageID, url string) error {
	r.updateCalls++
	if r.failUpdateAt != 0 && r.updateCalls == r.failUpdateAt {
		return errors.New("update blew up")
	}
	rv, ok := r.created[reviewID]
	if !ok {
		return revdom.ErrNotFound
	}
	for i := range rv.Images {
		if rv.Images[i].ID == imageID {
			rv.Images[i].URL = url
			r.created[reviewID] = rv
			return nil
		}
	}
	return revdom.ErrNotFound
}

func (r *fakeReviewRepo) MarkMediaReady(_ context.Context, reviewID string) error {
	if r.readyErr != nil {
		return r.readyErr
	}
	rv, ok := r.created[reviewID]
	if !ok {
		return revdom.ErrNotFound
	}
	rv.MediaStatus = revdom.MediaReady
	r.created[reviewID] = rv
	return nil
}
