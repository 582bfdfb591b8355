package models

import (
	"strings"
	"time"
)

// MediaKind identifies the type of media attached to a post.
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindImage MediaKind = "image"
)

// Ext returns the file extension for the media kind. The extension is
// decided from which URL field was present on the post, never by sniffing
// the downloaded payload.
func (k MediaKind) Ext() string {
	if k == MediaKindVideo {
		return ".mp4"
	}
	return ".jpg"
}

// MIME returns the content type used when storing and uploading the media.
func (k MediaKind) MIME() string {
	if k == MediaKindVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// KindForKey derives the media kind from a storage key's extension.
func KindForKey(key string) MediaKind {
	if strings.HasSuffix(key, ".mp4") {
		return MediaKindVideo
	}
	return MediaKindImage
}

// PostRecord is one scraped Instagram post. Records are created in bulk
// from a single actor run, persisted verbatim, and never mutated.
type PostRecord struct {
	ID            int64     `json:"id"`
	Username      string    `json:"ownerUsername"`
	FullName      string    `json:"ownerFullName,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	URL           string    `json:"url"`
	CommentsCount int       `json:"commentsCount"`
	LikesCount    int       `json:"likesCount"`
	Timestamp     time.Time `json:"timestamp"`
	VideoURL      string    `json:"videoUrl,omitempty"`
	DisplayURL    string    `json:"displayUrl,omitempty"`
}

// MediaURL returns the downloadable URL for the record and its kind.
// The video URL wins when both are present; a record with neither
// contributes nothing downstream.
func (p PostRecord) MediaURL() (string, MediaKind, bool) {
	if p.VideoURL != "" {
		return p.VideoURL, MediaKindVideo, true
	}
	if p.DisplayURL != "" {
		return p.DisplayURL, MediaKindImage, true
	}
	return "", "", false
}

// BlobRef identifies one stored media blob.
type BlobRef struct {
	Key  string
	Size int64
}

// FragmentStatus is the outcome of summarizing one media blob.
type FragmentStatus string

const (
	FragmentOK     FragmentStatus = "ok"
	FragmentFailed FragmentStatus = "failed"
)

// SummaryFragment is the generated text for one media blob. Failed
// fragments carry the error text so the reader sees what went wrong
// instead of a silent gap in the digest.
type SummaryFragment struct {
	Key    string
	Text   string
	Status FragmentStatus
}
