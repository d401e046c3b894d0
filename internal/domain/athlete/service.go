package athlete

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"nahio/backend/internal/storage"
	"nahio/backend/internal/utils"
)

// Repo is the store port for athletes. FirestoreRepo implements it;
// tests run the service on an in-memory fake.
type Repo interface {
	Create(ctx context.Context, a Athlete) (*Athlete, error)
	Get(ctx context.Context, id string) (*Athlete, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListByInstitution(ctx context.Context, institutionID string) ([]Athlete, error)
	List(ctx context.Context, f Filters) ([]Athlete, error)
	MutateMedia(ctx context.Context, id string, fn func(m *Media) error) error
}

type Service struct {
	repo  Repo
	blobs storage.BlobStore
	now   func() time.Time
}

func NewService(repo Repo, blobs storage.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, in CreateInput, institutionID, guardianID string) (*Athlete, error) {
	in.Trim()
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.Age <= 0 {
		return nil, fmt.Errorf("%w: age must be positive", ErrBadRequest)
	}
	if institutionID == "" {
		return nil, fmt.Errorf("%w: institutionId is required", ErrBadRequest)
	}

	now := s.now()
	a := Athlete{
		Name:          in.Name,
		Age:           in.Age,
		Position:      in.Position,
		Height:        in.Height,
		Weight:        in.Weight,
		DominantFoot:  in.DominantFoot,
		InstitutionID: institutionID,
		GuardianID:    guardianID,
		SearchTokens:  utils.SearchTokens(in.Name, in.Position),
		Media:         Media{Photos: []MediaItem{}, Videos: []MediaItem{}},
		Stats:         Stats{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.repo.Create(ctx, a)
}

// Update merges a partial patch. Identity and ownership fields, media and
// stats never travel through here; they have their own operations.
func (s *Service) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	for _, k := range []string{"id", "createdAt", "media", "stats", "institutionId", "searchTokens"} {
		delete(patch, k)
	}
	if name, ok := patch["name"].(string); ok {
		patch["searchTokens"] = utils.SearchTokens(name)
	}
	patch["updatedAt"] = s.now()
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Athlete, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByInstitution(ctx context.Context, institutionID string) ([]Athlete, error) {
	if institutionID == "" {
		return nil, fmt.Errorf("%w: institutionId is required", ErrBadRequest)
	}
	return s.repo.ListByInstitution(ctx, institutionID)
}

func (s *Service) ListAll(ctx context.Context, f Filters) ([]Athlete, error) {
	if (f.AgeMin == nil) != (f.AgeMax == nil) {
		return nil, fmt.Errorf("%w: ageMin and ageMax must be set together", ErrBadRequest)
	}
	if f.AgeMin != nil && *f.AgeMin > *f.AgeMax {
		return nil, fmt.Errorf("%w: ageMin greater than ageMax", ErrBadRequest)
	}
	return s.repo.List(ctx, f)
}

// Delete removes the athlete and every blob its media references.
// Blob cleanup runs first and is best-effort: a blob that is already
// gone must never block deleting the record.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	for _, item := range append(append([]MediaItem{}, a.Media.Photos...), a.Media.Videos...) {
		if item.StoragePath == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, item.StoragePath); err != nil {
			log.Printf("warn: failed to delete blob %s for athlete %s: %v", item.StoragePath, id, err)
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) UploadPhoto(ctx context.Context, athleteID string, r io.Reader, uploaderID string) (*MediaItem, error) {
	return s.upload(ctx, athleteID, r, uploaderID, MediaPhotos)
}

func (s *Service) UploadVideo(ctx context.Context, athleteID string, r io.Reader, uploaderID string) (*MediaItem, error) {
	return s.upload(ctx, athleteID, r, uploaderID, MediaVideos)
}

func (s *Service) upload(ctx context.Context, athleteID string, r io.Reader, uploaderID string, kind MediaKind) (*MediaItem, error) {
	if athleteID == "" {
		return nil, fmt.Errorf("%w: athleteId is required", ErrBadRequest)
	}

	ext, contentType := "jpg", "image/jpeg"
	if kind == MediaVideos {
		ext, contentType = "mp4", "video/mp4"
	}
	path := fmt.Sprintf("%s/%s/%s/%d.%s", "athletes", athleteID, kind, s.now().UnixMilli(), ext)

	url, err := s.blobs.Upload(ctx, path, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	item := MediaItem{
		URL:         url,
		StoragePath: path,
		IsFavorite:  false,
		UploadedBy:  uploaderID,
		UploadedAt:  s.now(),
	}

	err = s.repo.MutateMedia(ctx, athleteID, func(m *Media) error {
		arr := m.items(kind)
		*arr = append(*arr, item)
		return nil
	})
	if err != nil {
		// The blob is already stored; without an owning record it would
		// leak, so roll it back before reporting the failure.
		if delErr := s.blobs.Delete(ctx, path); delErr != nil {
			log.Printf("warn: failed to roll back orphaned blob %s: %v", path, delErr)
		}
		return nil, err
	}
	return &item, nil
}

func (s *Service) ToggleFavoritePhoto(ctx context.Context, athleteID string, index int) error {
	return s.toggleFavorite(ctx, athleteID, index, MediaPhotos)
}

func (s *Service) ToggleFavoriteVideo(ctx context.Context, athleteID string, index int) error {
	return s.toggleFavorite(ctx, athleteID, index, MediaVideos)
}

// toggleFavorite keeps at most one favorite per array: every flag is
// cleared, then the target is set only if it was not already favorite.
// Bounds are checked against the freshly read array, not a client copy.
func (s *Service) toggleFavorite(ctx context.Context, athleteID string, index int, kind MediaKind) error {
	if athleteID == "" {
		return fmt.Errorf("%w: athleteId is required", ErrBadRequest)
	}
	return s.repo.MutateMedia(ctx, athleteID, func(m *Media) error {
		arr := *m.items(kind)
		if index < 0 || index >= len(arr) {
			return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, kind, index)
		}
		wasFavorite := arr[index].IsFavorite
		for i := range arr {
			arr[i].IsFavorite = false
		}
		if !wasFavorite {
			arr[index].IsFavorite = true
		}
		return nil
	})
}

func (s *Service) DeletePhoto(ctx context.Context, athleteID string, index int) error {
	return s.deleteMedia(ctx, athleteID, index, MediaPhotos)
}

func (s *Service) DeleteVideo(ctx context.Context, athleteID string, index int) error {
	return s.deleteMedia(ctx, athleteID, index, MediaVideos)
}

func (s *Service) deleteMedia(ctx context.Context, athleteID string, index int, kind MediaKind) error {
	if athleteID == "" {
		return fmt.Errorf("%w: athleteId is required", ErrBadRequest)
	}

	a, err := s.repo.Get(ctx, athleteID)
	if err != nil {
		return err
	}
	arr := *a.Media.items(kind)
	if index < 0 || index >= len(arr) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, kind, index)
	}

	// Blob first, then the array element; a missing blob only warns.
	if path := arr[index].StoragePath; path != "" {
		if err := s.blobs.Delete(ctx, path); err != nil {
			log.Printf("warn: failed to delete blob %s for athlete %s: %v", path, athleteID, err)
		}
	}

	return s.repo.MutateMedia(ctx, athleteID, func(m *Media) error {
		arr := m.items(kind)
		if index >= len(*arr) {
			return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, kind, index)
		}
		*arr = append((*arr)[:index], (*arr)[index+1:]...)
		return nil
	})
}

// UpdateStats replaces the stats sub-object wholesale.
func (s *Service) UpdateStats(ctx context.Context, athleteID string, stats Stats) error {
	if athleteID == "" {
		return fmt.Errorf("%w: athleteId is required", ErrBadRequest)
	}
	if stats.Goals < 0 || stats.Assists < 0 || stats.Matches < 0 {
		return fmt.Errorf("%w: stats must not be negative", ErrBadRequest)
	}
	return s.repo.Update(ctx, athleteID, map[string]interface{}{
		"stats":     stats,
		"updatedAt": s.now(),
	})
}
