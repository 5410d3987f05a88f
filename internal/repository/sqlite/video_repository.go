package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"vidhub/internal/domain"
	"vidhub/internal/repository"
)

const createVideosTable = `
CREATE TABLE IF NOT EXISTS videos (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	title_folded TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	video_url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	channel_id TEXT NOT NULL,
	uploader TEXT NOT NULL,
	views INTEGER NOT NULL DEFAULT 0,
	likes INTEGER NOT NULL DEFAULT 0,
	dislikes INTEGER NOT NULL DEFAULT 0,
	upload_date DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_videos_channel_id ON videos(channel_id);
CREATE INDEX IF NOT EXISTS idx_videos_category ON videos(category);
`

const selectVideoColumns = `
SELECT id, title, description, thumbnail_url, video_url, category, channel_id, uploader, views, likes, dislikes, upload_date
FROM videos`

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) repository.VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createVideosTable); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	return r.ensureVideoColumns(ctx)
}

func (r *VideoRepository) ensureVideoColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `PRAGMA table_info(videos)`)
	if err != nil {
		return fmt.Errorf("describe videos table: %w", err)
	}

	columns := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan pragma table info: %w", err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate pragma table info: %w", err)
	}
	rows.Close()

	if _, exists := columns["title_folded"]; exists {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE videos ADD COLUMN title_folded TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("add column title_folded: %w", err)
	}
	return r.backfillFoldedTitles(ctx)
}

// backfillFoldedTitles fills title_folded for rows written before the column existed.
func (r *VideoRepository) backfillFoldedTitles(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM videos`)
	if err != nil {
		return fmt.Errorf("query titles: %w", err)
	}
	titles := map[string]string{}
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			rows.Close()
			return fmt.Errorf("scan title: %w", err)
		}
		titles[id] = title
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate titles: %w", err)
	}
	rows.Close()

	for id, title := range titles {
		if _, err := r.db.ExecContext(ctx, `UPDATE videos SET title_folded=? WHERE id=?`, foldTitle(title), id); err != nil {
			return fmt.Errorf("backfill folded title: %w", err)
		}
	}
	return nil
}

// foldTitle applies Unicode case folding; sqlite's lower() only folds ASCII.
func foldTitle(title string) string {
	return cases.Fold().String(title)
}

func (r *VideoRepository) Create(ctx context.Context, video *domain.Video) error {
	if video.UploadDate.IsZero() {
		video.UploadDate = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO videos (id, title, title_folded, description, thumbnail_url, video_url, category, channel_id, uploader, views, likes, dislikes, upload_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		video.Title,
		foldTitle(video.Title),
		video.Description,
		video.ThumbnailURL,
		video.VideoURL,
		video.Category,
		video.ChannelID,
		video.Uploader,
		video.Views,
		video.Likes,
		video.Dislikes,
		video.UploadDate.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id=?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup video: %w", err)
	}
	return true, nil
}

func (r *VideoRepository) Get(ctx context.Context, id string) (*domain.Video, error) {
	row := r.db.QueryRowContext(ctx, selectVideoColumns+`
WHERE id=?`,
		id,
	)
	video, err := scanVideo(row)
	if err != nil {
		return nil, err
	}

	videos := []domain.Video{*video}
	if err := r.attachReactions(ctx, videos); err != nil {
		return nil, err
	}
	comments, err := r.listComments(ctx, id)
	if err != nil {
		return nil, err
	}
	videos[0].Comments = comments
	return &videos[0], nil
}

// List matches the title case-insensitively as a substring and the category exactly,
// newest upload first.
func (r *VideoRepository) List(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, error) {
	var (
		where []string
		args  []any
	)
	if title := strings.TrimSpace(filter.Title); title != "" {
		where = append(where, "instr(title_folded, ?) > 0")
		args = append(args, foldTitle(title))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}

	query := selectVideoColumns
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY upload_date DESC, rowid DESC"

	return r.queryVideos(ctx, query, args...)
}

func (r *VideoRepository) ListByChannel(ctx context.Context, channelID string) ([]domain.Video, error) {
	return r.queryVideos(ctx, selectVideoColumns+`
WHERE channel_id=?
ORDER BY rowid ASC`,
		channelID,
	)
}

func (r *VideoRepository) UpdateMetadata(ctx context.Context, video *domain.Video) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE videos
SET title=?, title_folded=?, description=?, thumbnail_url=?, video_url=?, category=?
WHERE id=?`,
		video.Title,
		foldTitle(video.Title),
		video.Description,
		video.ThumbnailURL,
		video.VideoURL,
		video.Category,
		video.ID,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return expectAffected(res, "video "+video.ID)
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM video_comments WHERE video_id=?`, id); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM video_reactions WHERE video_id=?`, id); err != nil {
		return fmt.Errorf("delete video reactions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if err := expectAffected(res, "video "+id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit video delete: %w", err)
	}
	return nil
}

// IncrementViews bumps the counter in a single statement and returns the new value.
func (r *VideoRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := r.db.QueryRowContext(ctx, `
UPDATE videos
SET views = views + 1
WHERE id=?
RETURNING views`,
		id,
	).Scan(&views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

func (r *VideoRepository) queryVideos(ctx context.Context, query string, args ...any) ([]domain.Video, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}

	videos := []domain.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		videos = append(videos, *video)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// the pool has a single connection, release it before the reactions query
	rows.Close()

	if err := r.attachReactions(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// attachReactions fills LikedBy/DislikedBy for all videos with one query.
func (r *VideoRepository) attachReactions(ctx context.Context, videos []domain.Video) error {
	if len(videos) == 0 {
		return nil
	}

	index := make(map[string]int, len(videos))
	ids := make([]string, len(videos))
	for i := range videos {
		videos[i].LikedBy = []string{}
		videos[i].DislikedBy = []string{}
		index[videos[i].ID] = i
		ids[i] = videos[i].ID
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`
SELECT video_id, user_id, kind
FROM video_reactions
WHERE video_id IN (%s)
ORDER BY rowid ASC`, placeholders(len(ids))),
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var videoID, userID, kind string
		if err := rows.Scan(&videoID, &userID, &kind); err != nil {
			return fmt.Errorf("scan reaction: %w", err)
		}
		i, ok := index[videoID]
		if !ok {
			continue
		}
		switch domain.Reaction(kind) {
		case domain.ReactionLike:
			videos[i].LikedBy = append(videos[i].LikedBy, userID)
		case domain.ReactionDislike:
			videos[i].DislikedBy = append(videos[i].DislikedBy, userID)
		}
	}
	return rows.Err()
}

func (r *VideoRepository) listComments(ctx context.Context, videoID string) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectCommentColumns+`
WHERE video_id=?
ORDER BY seq ASC`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func scanVideo(scanner interface {
	Scan(dest ...any) error
}) (*domain.Video, error) {
	var video domain.Video
	if err := scanner.Scan(
		&video.ID,
		&video.Title,
		&video.Description,
		&video.ThumbnailURL,
		&video.VideoURL,
		&video.Category,
		&video.ChannelID,
		&video.Uploader,
		&video.Views,
		&video.Likes,
		&video.Dislikes,
		&video.UploadDate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan video: %w", err)
	}
	return &video, nil
}

func expectAffected(res sql.Result, what string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
