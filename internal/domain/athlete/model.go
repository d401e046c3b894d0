package athlete

import (
	"strings"
	"time"
)

// MediaItem is one stored photo or video. Within each of the photos and
// videos arrays at most one item has IsFavorite set.
type MediaItem struct {
	URL         string    `firestore:"url" json:"url"`
	StoragePath string    `firestore:"storagePath" json:"storagePath"`
	Thumbnail   string    `firestore:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	IsFavorite  bool      `firestore:"isFavorite" json:"isFavorite"`
	UploadedBy  string    `firestore:"uploadedBy" json:"uploadedBy"`
	UploadedAt  time.Time `firestore:"uploadedAt" json:"uploadedAt"`
}

type Media struct {
	Photos []MediaItem `firestore:"photos" json:"photos"`
	Videos []MediaItem `firestore:"videos" json:"videos"`
}

type Stats struct {
	Goals   int `firestore:"goals" json:"goals"`
	Assists int `firestore:"assists" json:"assists"`
	Matches int `firestore:"matches" json:"matches"`
}

type Athlete struct {
	ID            string   `firestore:"id" json:"id"`
	Name          string   `firestore:"name" json:"name"`
	Age           int      `firestore:"age" json:"age"`
	Position      string   `firestore:"position" json:"position"`
	Height        float64  `firestore:"height,omitempty" json:"height,omitempty"`
	Weight        float64  `firestore:"weight,omitempty" json:"weight,omitempty"`
	DominantFoot  string   `firestore:"dominantFoot,omitempty" json:"dominantFoot,omitempty"`
	InstitutionID string   `firestore:"institutionId" json:"institutionId"`
	GuardianID    string   `firestore:"guardianId,omitempty" json:"guardianId,omitempty"`
	PhotoURL      string   `firestore:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	SearchTokens  []string `firestore:"searchTokens,omitempty" json:"-"`

	Media Media `firestore:"media" json:"media"`
	Stats Stats `firestore:"stats" json:"stats"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type CreateInput struct {
	Name         string  `json:"name"`
	Age          int     `json:"age"`
	Position     string  `json:"position"`
	Height       float64 `json:"height,omitempty"`
	Weight       float64 `json:"weight,omitempty"`
	DominantFoot string  `json:"dominantFoot,omitempty"`
}

func (in *CreateInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	in.DominantFoot = strings.TrimSpace(in.DominantFoot)
}

// Filters narrows ListAll. Position is an exact match; the age range is
// inclusive on both ends and only applied when both bounds are set.
type Filters struct {
	Position string `json:"position,omitempty"`
	AgeMin   *int   `json:"ageMin,omitempty"`
	AgeMax   *int   `json:"ageMax,omitempty"`
}

// MediaKind selects which array an index-based media operation targets.
type MediaKind string

const (
	MediaPhotos MediaKind = "photos"
	MediaVideos MediaKind = "videos"
)

func (m *Media) items(kind MediaKind) *[]MediaItem {
	if kind == MediaVideos {
		return &m.Videos
	}
	return &m.Photos
}
