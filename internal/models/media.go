package models

// Media types
const (
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
)

// MediaItem is a video or audio clip shown in the media gallery.
type MediaItem struct {
	ID           int     `json:"id"`
	Type         string  `json:"type"`
	URL          string  `json:"url"`
	Thumbnail    *string `json:"thumbnail"`
	Caption      *string `json:"caption"`
	SubtitlesURL *string `json:"subtitles_url"`
	Duration     *int    `json:"duration"`
}

// MediaItemInput is the body of POST /api/media.
type MediaItemInput struct {
	Type         string  `json:"type" validate:"required,oneof=video audio"`
	URL          string  `json:"url" validate:"required,url"`
	Thumbnail    *string `json:"thumbnail" validate:"omitempty,url"`
	Caption      *string `json:"caption"`
	SubtitlesURL *string `json:"subtitles_url" validate:"omitempty,url"`
	Duration     *int    `json:"duration" validate:"omitempty,gte=0"`
}
