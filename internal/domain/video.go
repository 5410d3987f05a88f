package domain

import "time"

// Video is the metadata record of an externally hosted video.
type Video struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	VideoURL     string
	Category     string
	ChannelID    string
	Uploader     string
	Views        int64
	Likes        int64
	Dislikes     int64
	LikedBy      []string
	DislikedBy   []string
	UploadDate   time.Time
	Comments     []Comment
}

// Comment is a single entry in a video's comment list, ordered by insertion.
type Comment struct {
	ID        string
	VideoID   string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// VideoInput is the payload of a new upload.
type VideoInput struct {
	Title        string
	Description  string
	ThumbnailURL string
	VideoURL     string
	Category     string
	ChannelID    string
	// Uploader is the uploader id claimed by the client, if any. The authenticated
	// user is always recorded as the uploader; a differing claim is rejected.
	Uploader string
}

// VideoUpdate lists the mutable video fields. Nil fields are left untouched.
type VideoUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	VideoURL     *string
	Category     *string
}

// VideoFilter narrows catalog listings. Empty fields do not filter.
type VideoFilter struct {
	Title    string
	Category string
}

// ReactionCounts is the like/dislike pair returned after a toggle.
type ReactionCounts struct {
	Likes    int64
	Dislikes int64
}
