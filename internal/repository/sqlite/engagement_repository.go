package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidhub/internal/domain"
	"vidhub/internal/repository"
)

// One reaction row per (video, user): a user cannot both like and dislike a video.
const createEngagementTables = `
CREATE TABLE IF NOT EXISTS video_reactions (
	video_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('like', 'dislike')),
	created_at DATETIME NOT NULL,
	PRIMARY KEY (video_id, user_id),
	FOREIGN KEY(video_id) REFERENCES videos(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS video_comments (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	video_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(video_id) REFERENCES videos(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_video_comments_video_id ON video_comments(video_id, seq);
`

const selectCommentColumns = `
SELECT id, video_id, user_id, text, created_at
FROM video_comments`

type EngagementRepository struct {
	db *sql.DB
}

func NewEngagementRepository(db *sql.DB) repository.EngagementRepository {
	return &EngagementRepository{db: db}
}

func (r *EngagementRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEngagementTables); err != nil {
		return fmt.Errorf("create engagement tables: %w", err)
	}
	return nil
}

// ApplyReaction reads the user's current reaction, applies the toggle rule and
// writes the reaction row and both counters in one transaction.
func (r *EngagementRepository) ApplyReaction(ctx context.Context, videoID, userID string, requested domain.Reaction) (domain.ReactionCounts, domain.Reaction, error) {
	var counts domain.ReactionCounts
	if !requested.Valid() {
		return counts, domain.ReactionNone, fmt.Errorf("reaction %q: %w", requested, domain.ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, domain.ReactionNone, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id=?`, videoID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return counts, domain.ReactionNone, fmt.Errorf("video %s: %w", videoID, domain.ErrNotFound)
		}
		return counts, domain.ReactionNone, fmt.Errorf("lookup video: %w", err)
	}

	current := domain.ReactionNone
	var kind string
	err = tx.QueryRowContext(ctx, `
SELECT kind FROM video_reactions
WHERE video_id=? AND user_id=?`,
		videoID,
		userID,
	).Scan(&kind)
	switch {
	case err == nil:
		current = domain.Reaction(kind)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return counts, domain.ReactionNone, fmt.Errorf("lookup reaction: %w", err)
	}

	change := domain.ApplyReaction(current, requested)
	if change.Next == domain.ReactionNone {
		if _, err := tx.ExecContext(ctx, `DELETE FROM video_reactions WHERE video_id=? AND user_id=?`, videoID, userID); err != nil {
			return counts, domain.ReactionNone, fmt.Errorf("clear reaction: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO video_reactions (video_id, user_id, kind, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(video_id, user_id) DO UPDATE SET kind=excluded.kind, created_at=excluded.created_at`,
			videoID,
			userID,
			string(change.Next),
			time.Now().UTC(),
		); err != nil {
			return counts, domain.ReactionNone, fmt.Errorf("store reaction: %w", err)
		}
	}

	if err := tx.QueryRowContext(ctx, `
UPDATE videos
SET likes = likes + ?, dislikes = dislikes + ?
WHERE id=?
RETURNING likes, dislikes`,
		change.LikeDelta,
		change.DislikeDelta,
		videoID,
	).Scan(&counts.Likes, &counts.Dislikes); err != nil {
		return counts, domain.ReactionNone, fmt.Errorf("update reaction counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return counts, domain.ReactionNone, fmt.Errorf("commit reaction: %w", err)
	}
	return counts, change.Next, nil
}

func (r *EngagementRepository) AddComment(ctx context.Context, comment *domain.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id=?`, comment.VideoID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("video %s: %w", comment.VideoID, domain.ErrNotFound)
		}
		return fmt.Errorf("lookup video: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO video_comments (id, video_id, user_id, text, created_at)
VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.VideoID,
		comment.UserID,
		comment.Text,
		comment.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit comment: %w", err)
	}
	return nil
}

// DeleteCommentAt resolves the position, checks the author and deletes inside one
// transaction, so the comment checked is the comment removed.
func (r *EngagementRepository) DeleteCommentAt(ctx context.Context, videoID string, index int, authorID string) error {
	if index < 0 {
		return fmt.Errorf("comment index %d: %w", index, domain.ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	comment, err := scanComment(tx.QueryRowContext(ctx, selectCommentColumns+`
WHERE video_id=?
ORDER BY seq ASC
LIMIT 1 OFFSET ?`,
		videoID,
		index,
	))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("comment index %d out of range: %w", index, domain.ErrValidation)
		}
		return err
	}
	if comment.UserID != authorID {
		return fmt.Errorf("comment %s: %w", comment.ID, domain.ErrForbidden)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM video_comments WHERE id=?`, comment.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit comment delete: %w", err)
	}
	return nil
}

func (r *EngagementRepository) GetComment(ctx context.Context, videoID, commentID string) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, selectCommentColumns+`
WHERE video_id=? AND id=?`,
		videoID,
		commentID,
	)
	return scanComment(row)
}

// DeleteComment removes the comment only if it still exists and belongs to authorID.
func (r *EngagementRepository) DeleteComment(ctx context.Context, videoID, commentID, authorID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM video_comments
WHERE video_id=? AND id=? AND user_id=?`,
		videoID,
		commentID,
		authorID,
	)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectAffected(res, "comment "+commentID)
}

func scanComment(scanner interface {
	Scan(dest ...any) error
}) (*domain.Comment, error) {
	var comment domain.Comment
	if err := scanner.Scan(
		&comment.ID,
		&comment.VideoID,
		&comment.UserID,
		&comment.Text,
		&comment.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
