package athlete

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeRepo struct {
	athletes   map[string]*Athlete
	nextID     int
	failMutate bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{athletes: map[string]*Athlete{}}
}

func (r *fakeRepo) Create(_ context.Context, a Athlete) (*Athlete, error) {
	r.nextID++
	a.ID = fmt.Sprintf("ath-%d", r.nextID)
	cp := a
	r.athletes[a.ID] = &cp
	return &a, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*Athlete, error) {
	a, ok := r.athletes[id]
	if !ok {
		return nil, fmt.Errorf("%w: athlete not found", ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	a, ok := r.athletes[id]
	if !ok {
		return fmt.Errorf("%w: athlete not found", ErrNotFound)
	}
	if name, ok := updates["name"].(string); ok {
		a.Name = name
	}
	if stats, ok := updates["stats"].(Stats); ok {
		a.Stats = stats
	}
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.athletes, id)
	return nil
}

func (r *fakeRepo) ListByInstitution(_ context.Context, institutionID string) ([]Athlete, error) {
	out := []Athlete{}
	for _, a := range r.athletes {
		if a.InstitutionID == institutionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(_ context.Context, f Filters) ([]Athlete, error) {
	out := []Athlete{}
	for _, a := range r.athletes {
		if f.Position != "" && a.Position != f.Position {
			continue
		}
		if f.AgeMin != nil && (a.Age < *f.AgeMin || a.Age > *f.AgeMax) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeRepo) MutateMedia(_ context.Context, id string, fn func(m *Media) error) error {
	if r.failMutate {
		return errors.New("transaction failed")
	}
	a, ok := r.athletes[id]
	if !ok {
		return fmt.Errorf("%w: athlete not found", ErrNotFound)
	}
	return fn(&a.Media)
}

type fakeBlobs struct {
	stored  map[string]bool
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{stored: map[string]bool{}}
}

func (b *fakeBlobs) Upload(_ context.Context, path, _ string, _ io.Reader) (string, error) {
	b.stored[path] = true
	return "https://blobs.test/" + path, nil
}

func (b *fakeBlobs) Delete(_ context.Context, path string) error {
	if !b.stored[path] {
		return errors.New("object does not exist")
	}
	delete(b.stored, path)
	b.deleted = append(b.deleted, path)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeBlobs) {
	repo := newFakeRepo()
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, blobs
}

func createTestAthlete(t *testing.T, svc *Service) *Athlete {
	t.Helper()
	a, err := svc.Create(context.Background(), CreateInput{Name: "João Silva", Age: 15, Position: "atacante"}, "inst-1", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func TestCreateInitializesMediaAndStats(t *testing.T) {
	svc, _, _ := newTestService()
	a := createTestAthlete(t, svc)

	if a.Media.Photos == nil || len(a.Media.Photos) != 0 {
		t.Fatalf("expected empty photos array, got %v", a.Media.Photos)
	}
	if a.Media.Videos == nil || len(a.Media.Videos) != 0 {
		t.Fatalf("expected empty videos array, got %v", a.Media.Videos)
	}
	if a.Stats != (Stats{}) {
		t.Fatalf("expected zeroed stats, got %+v", a.Stats)
	}
	if len(a.SearchTokens) == 0 {
		t.Fatalf("expected search tokens")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "  ", Age: 15}, "inst-1", ""); !IsErrBadRequest(err) {
		t.Fatalf("blank name: want ErrBadRequest, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "X", Age: 0}, "inst-1", ""); !IsErrBadRequest(err) {
		t.Fatalf("zero age: want ErrBadRequest, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "X", Age: 15}, "", ""); !IsErrBadRequest(err) {
		t.Fatalf("no institution: want ErrBadRequest, got %v", err)
	}
}

func TestListAllAgeRangeValidation(t *testing.T) {
	svc, _, _ := newTestService()
	min, max := 12, 10

	if _, err := svc.ListAll(context.Background(), Filters{AgeMin: &min}); !IsErrBadRequest(err) {
		t.Fatalf("half-open range: want ErrBadRequest, got %v", err)
	}
	if _, err := svc.ListAll(context.Background(), Filters{AgeMin: &min, AgeMax: &max}); !IsErrBadRequest(err) {
		t.Fatalf("inverted range: want ErrBadRequest, got %v", err)
	}
}

func TestUploadPhotoAppendsItem(t *testing.T) {
	svc, repo, blobs := newTestService()
	a := createTestAthlete(t, svc)

	item, err := svc.UploadPhoto(context.Background(), a.ID, strings.NewReader("jpeg-bytes"), "scout-1")
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if !strings.HasPrefix(item.StoragePath, "athletes/"+a.ID+"/photos/") {
		t.Fatalf("unexpected storage path %q", item.StoragePath)
	}
	if !blobs.stored[item.StoragePath] {
		t.Fatalf("blob not stored")
	}

	got := repo.athletes[a.ID]
	if len(got.Media.Photos) != 1 || got.Media.Photos[0].IsFavorite {
		t.Fatalf("unexpected photos state: %+v", got.Media.Photos)
	}
}

func TestUploadRollsBackBlobWhenRecordWriteFails(t *testing.T) {
	svc, repo, blobs := newTestService()
	a := createTestAthlete(t, svc)
	repo.failMutate = true

	if _, err := svc.UploadVideo(context.Background(), a.ID, strings.NewReader("mp4"), "scout-1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(blobs.stored) != 0 {
		t.Fatalf("orphaned blob left behind: %v", blobs.stored)
	}
}

func TestToggleFavoriteKeepsSingleFavorite(t *testing.T) {
	svc, repo, _ := newTestService()
	a := createTestAthlete(t, svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.UploadPhoto(ctx, a.ID, strings.NewReader("x"), "scout-1"); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
		// Distinct timestamps keep the storage paths unique.
		base := svc.now()
		svc.now = func() time.Time { return base.Add(time.Second) }
	}

	if err := svc.ToggleFavoritePhoto(ctx, a.ID, 1); err != nil {
		t.Fatalf("favorite 1: %v", err)
	}
	assertSingleFavorite(t, repo.athletes[a.ID].Media.Photos, 1)

	// Moving the favorite clears the old one.
	if err := svc.ToggleFavoritePhoto(ctx, a.ID, 2); err != nil {
		t.Fatalf("favorite 2: %v", err)
	}
	assertSingleFavorite(t, repo.athletes[a.ID].Media.Photos, 2)

	// Toggling the current favorite off leaves none.
	if err := svc.ToggleFavoritePhoto(ctx, a.ID, 2); err != nil {
		t.Fatalf("unfavorite 2: %v", err)
	}
	assertSingleFavorite(t, repo.athletes[a.ID].Media.Photos, -1)
}

func assertSingleFavorite(t *testing.T, items []MediaItem, want int) {
	t.Helper()
	for i, item := range items {
		if item.IsFavorite != (i == want) {
			t.Fatalf("favorite state wrong at %d (want favorite=%d): %+v", i, want, items)
		}
	}
}

func TestToggleFavoriteOutOfRange(t *testing.T) {
	svc, _, _ := newTestService()
	a := createTestAthlete(t, svc)

	err := svc.ToggleFavoritePhoto(context.Background(), a.ID, 0)
	if !IsErrIndexOutOfRange(err) {
		t.Fatalf("want ErrIndexOutOfRange, got %v", err)
	}
}

func TestDeletePhotoRemovesBlobAndEntry(t *testing.T) {
	svc, repo, blobs := newTestService()
	a := createTestAthlete(t, svc)
	ctx := context.Background()

	item, err := svc.UploadPhoto(ctx, a.ID, strings.NewReader("x"), "scout-1")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.DeletePhoto(ctx, a.ID, 0); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	if len(repo.athletes[a.ID].Media.Photos) != 0 {
		t.Fatalf("photo entry not removed")
	}
	if blobs.stored[item.StoragePath] {
		t.Fatalf("blob not deleted")
	}

	if err := svc.DeletePhoto(ctx, a.ID, 0); !IsErrIndexOutOfRange(err) {
		t.Fatalf("want ErrIndexOutOfRange on empty array, got %v", err)
	}
}

func TestDeleteAthleteCleansUpBlobs(t *testing.T) {
	svc, repo, blobs := newTestService()
	a := createTestAthlete(t, svc)
	ctx := context.Background()

	if _, err := svc.UploadPhoto(ctx, a.ID, strings.NewReader("x"), "scout-1"); err != nil {
		t.Fatalf("upload photo: %v", err)
	}
	base := svc.now()
	svc.now = func() time.Time { return base.Add(time.Second) }
	if _, err := svc.UploadVideo(ctx, a.ID, strings.NewReader("x"), "scout-1"); err != nil {
		t.Fatalf("upload video: %v", err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(blobs.stored) != 0 {
		t.Fatalf("blobs left behind: %v", blobs.stored)
	}
	if _, ok := repo.athletes[a.ID]; ok {
		t.Fatalf("record not deleted")
	}
}

func TestUpdateStripsProtectedFields(t *testing.T) {
	svc, _, _ := newTestService()
	a := createTestAthlete(t, svc)

	patch := map[string]interface{}{
		"name":          "Pedro",
		"institutionId": "inst-other",
		"media":         "bogus",
		"stats":         "bogus",
	}
	if err := svc.Update(context.Background(), a.ID, patch); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := patch["institutionId"]; ok {
		t.Fatalf("institutionId not stripped")
	}
	if _, ok := patch["media"]; ok {
		t.Fatalf("media not stripped")
	}
	if _, ok := patch["searchTokens"]; !ok {
		t.Fatalf("searchTokens not refreshed on name change")
	}
}

func TestUpdateStatsRejectsNegative(t *testing.T) {
	svc, repo, _ := newTestService()
	a := createTestAthlete(t, svc)
	ctx := context.Background()

	if err := svc.UpdateStats(ctx, a.ID, Stats{Goals: -1}); !IsErrBadRequest(err) {
		t.Fatalf("want ErrBadRequest, got %v", err)
	}

	if err := svc.UpdateStats(ctx, a.ID, Stats{Goals: 3, Assists: 2, Matches: 7}); err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}
	if repo.athletes[a.ID].Stats.Goals != 3 {
		t.Fatalf("stats not replaced: %+v", repo.athletes[a.ID].Stats)
	}
}
