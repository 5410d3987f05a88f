package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vidhub/internal/cache"
	"vidhub/internal/domain"
	"vidhub/internal/repository/sqlite"
)

type fixture struct {
	users      UserService
	channels   ChannelService
	videos     VideoService
	engagement EngagementService
	recorder   *countingRecorder
}

type countingRecorder struct {
	mu        sync.Mutex
	reactions []string
	views     int
	added     int
	deleted   int
}

func (r *countingRecorder) ReactionToggled(reaction, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactions = append(r.reactions, reaction+"->"+result)
}

func (r *countingRecorder) ViewRegistered() {
	r.mu.Lock()
	r.views++
	r.mu.Unlock()
}

func (r *countingRecorder) CommentAdded() {
	r.mu.Lock()
	r.added++
	r.mu.Unlock()
}

func (r *countingRecorder) CommentDeleted() {
	r.mu.Lock()
	r.deleted++
	r.mu.Unlock()
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "vidhub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	channelRepo := sqlite.NewChannelRepository(db)
	videoRepo := sqlite.NewVideoRepository(db)
	engagementRepo := sqlite.NewEngagementRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, channelRepo.Init(ctx))
	require.NoError(t, videoRepo.Init(ctx))
	require.NoError(t, engagementRepo.Init(ctx))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	names := NewUsernameDirectory(userRepo, cache.NewMemory(cache.DefaultTTL), logger)
	rec := &countingRecorder{}

	users := NewUserService(userRepo)
	users.(*userService).hashCost = bcrypt.MinCost

	return fixture{
		users:      users,
		channels:   NewChannelService(channelRepo, names),
		videos:     NewVideoService(videoRepo, channelRepo, names, rec),
		engagement: NewEngagementService(videoRepo, engagementRepo, names, rec),
		recorder:   rec,
	}
}

func (f fixture) register(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), username, username+"@example.com", "secret1")
	require.NoError(t, err)
	return u
}

func (f fixture) channel(t *testing.T, owner *domain.User) *ChannelDetails {
	t.Helper()
	ch, err := f.channels.Create(context.Background(), owner.ID, owner.Username+"'s channel", "", "")
	require.NoError(t, err)
	return ch
}

func (f fixture) upload(t *testing.T, owner *domain.User, ch *ChannelDetails, title, category string) *VideoDetails {
	t.Helper()
	v, err := f.videos.Upload(context.Background(), owner.ID, domain.VideoInput{
		Title:        title,
		Description:  "a long enough description",
		ThumbnailURL: "https://cdn.example.com/thumb.jpg",
		VideoURL:     "https://cdn.example.com/video.mp4",
		Category:     category,
		ChannelID:    ch.Channel.ChannelID,
	})
	require.NoError(t, err)
	return v
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "  alice ", "A@X.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = f.users.Register(ctx, "alice2", "a@x.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.users.Authenticate(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = f.users.Authenticate(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"short username", "al", "al@x.com", "secret1"},
		{"bad email", "alice", "not-an-email", "secret1"},
		{"short password", "alice", "a@x.com", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestChannelOnePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	first, err := f.channels.Create(ctx, alice.ID, " MyChan ", " about ", "")
	require.NoError(t, err)
	assert.Equal(t, "MyChan", first.Channel.Name)
	assert.Equal(t, "about", first.Channel.Description)
	assert.Equal(t, "alice", first.OwnerUsername)
	assert.Contains(t, first.Channel.ChannelID, "channel_")

	_, err = f.channels.Create(ctx, alice.ID, "Second", "", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.channels.GetByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Channel.ChannelID, got.Channel.ChannelID)
	assert.Equal(t, "MyChan", got.Channel.Name)

	_, err = f.channels.Create(ctx, alice.ID, "   ", "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChannelUpdateOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ch := f.channel(t, alice)

	name := "Renamed"
	_, err := f.channels.Update(ctx, ch.Channel.ChannelID, bob.ID, domain.ChannelUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.channels.Update(ctx, "channel_missing", alice.ID, domain.ChannelUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	blank := " "
	_, err = f.channels.Update(ctx, ch.Channel.ChannelID, alice.ID, domain.ChannelUpdate{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	banner := "https://cdn.example.com/banner.png"
	updated, err := f.channels.Update(ctx, ch.Channel.ChannelID, alice.ID, domain.ChannelUpdate{Name: &name, Banner: &banner})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Channel.Name)
	assert.Equal(t, banner, updated.Channel.Banner)
	assert.Equal(t, alice.ID, updated.Channel.OwnerID)
}

func TestChannelUpdateIgnoresEmptyBanner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	ch := f.channel(t, alice)

	banner := "https://cdn.example.com/banner.png"
	_, err := f.channels.Update(ctx, ch.Channel.ChannelID, alice.ID, domain.ChannelUpdate{Banner: &banner})
	require.NoError(t, err)

	for _, empty := range []string{"", "  "} {
		description := "about " + empty
		updated, err := f.channels.Update(ctx, ch.Channel.ChannelID, alice.ID, domain.ChannelUpdate{Banner: &empty, Description: &description})
		require.NoError(t, err)
		assert.Equal(t, banner, updated.Channel.Banner)
		assert.Equal(t, "about", updated.Channel.Description)
	}

	got, err := f.channels.GetByChannelID(ctx, ch.Channel.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, banner, got.Channel.Banner)
}

func TestUploadHardening(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ch := f.channel(t, alice)
	f.channel(t, bob)

	input := domain.VideoInput{
		Title:        "Intro to X",
		Description:  "a long enough description",
		ThumbnailURL: "https://cdn.example.com/t.jpg",
		VideoURL:     "s3://videos/intro.mp4",
		Category:     "React",
		ChannelID:    ch.Channel.ChannelID,
	}

	_, err := f.videos.Upload(ctx, "", input)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.videos.Upload(ctx, bob.ID, input)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	spoofed := input
	spoofed.Uploader = bob.ID
	_, err = f.videos.Upload(ctx, alice.ID, spoofed)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	missing := input
	missing.ChannelID = "channel_missing"
	_, err = f.videos.Upload(ctx, alice.ID, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	badURL := input
	badURL.VideoURL = "ftp://example.com/v.mp4"
	_, err = f.videos.Upload(ctx, alice.ID, badURL)
	assert.ErrorIs(t, err, domain.ErrValidation)

	shortTitle := input
	shortTitle.Title = "X"
	_, err = f.videos.Upload(ctx, alice.ID, shortTitle)
	assert.ErrorIs(t, err, domain.ErrValidation)

	v, err := f.videos.Upload(ctx, alice.ID, input)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, v.Video.Uploader)
	assert.Equal(t, "alice", v.UploaderUsername)
	assert.Zero(t, v.Video.Views)
	assert.Zero(t, v.Video.Likes)
	assert.Zero(t, v.Video.Dislikes)
}

func TestListFiltersAndUsernames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	ch := f.channel(t, alice)
	f.upload(t, alice, ch, "Intro to X", "React")
	f.upload(t, alice, ch, "Advanced Go", "Go")

	videos, err := f.videos.List(ctx, domain.VideoFilter{Category: "React"})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "Intro to X", videos[0].Video.Title)
	assert.Equal(t, "alice", videos[0].UploaderUsername)

	videos, err = f.videos.List(ctx, domain.VideoFilter{Title: "intro"})
	require.NoError(t, err)
	require.Len(t, videos, 1)

	videos, err = f.videos.List(ctx, domain.VideoFilter{Title: "intro", Category: "Go"})
	require.NoError(t, err)
	assert.Empty(t, videos)

	byChannel, err := f.videos.ListByChannel(ctx, ch.Channel.ChannelID)
	require.NoError(t, err)
	require.Len(t, byChannel, 2)
	assert.Equal(t, "Intro to X", byChannel[0].Video.Title)
}

func TestGetValidatesID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.videos.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.videos.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNonCanonicalIDsResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	v := f.upload(t, alice, f.channel(t, alice), "Intro to X", "React")
	id := v.Video.ID

	for _, form := range []string{
		strings.ToUpper(id),
		"{" + id + "}",
		"urn:uuid:" + id,
		strings.ReplaceAll(id, "-", ""),
	} {
		got, err := f.videos.Get(ctx, form)
		require.NoError(t, err, form)
		assert.Equal(t, id, got.Video.ID)
	}

	views, err := f.videos.RegisterView(ctx, strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	counts, err := f.engagement.Like(ctx, "{"+id+"}", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Likes)

	comment, err := f.engagement.AddComment(ctx, strings.ToUpper(id), bob.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, id, comment.Comment.VideoID)
	require.NoError(t, f.engagement.DeleteComment(ctx, "urn:uuid:"+id, bob.ID, strings.ToUpper(comment.Comment.ID)))

	got, err := f.videos.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Video.Views)
	assert.Equal(t, []string{bob.ID}, got.Video.LikedBy)
	assert.Empty(t, got.Comments)
}

func TestVideoUpdateAllowList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	v := f.upload(t, alice, f.channel(t, alice), "Intro to X", "React")

	title := "Intro to Y"
	_, err := f.videos.Update(ctx, v.Video.ID, bob.ID, domain.VideoUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	short := "no"
	_, err = f.videos.Update(ctx, v.Video.ID, alice.ID, domain.VideoUpdate{Description: &short})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.engagement.Like(ctx, v.Video.ID, bob.ID)
	require.NoError(t, err)

	updated, err := f.videos.Update(ctx, v.Video.ID, alice.ID, domain.VideoUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Intro to Y", updated.Video.Title)
	assert.Equal(t, "React", updated.Video.Category)
	assert.Equal(t, int64(1), updated.Video.Likes)
	assert.Equal(t, []string{bob.ID}, updated.Video.LikedBy)
}

func TestVideoDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	v := f.upload(t, alice, f.channel(t, alice), "Intro to X", "React")

	assert.ErrorIs(t, f.videos.Delete(ctx, v.Video.ID, bob.ID), domain.ErrForbidden)
	require.NoError(t, f.videos.Delete(ctx, v.Video.ID, alice.ID))

	_, err := f.videos.Get(ctx, v.Video.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterViewIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	v := f.upload(t, alice, f.channel(t, alice), "Intro to X", "React")

	views, err := f.videos.RegisterView(ctx, v.Video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
	views, err = f.videos.RegisterView(ctx, v.Video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)
	assert.Equal(t, 2, f.recorder.views)

	_, err = f.videos.RegisterView(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLikeTogglesAndSwitches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	v := f.upload(t, alice, f.channel(t, alice), "Intro to X", "React")

	counts, err := f.engagement.Like(ctx, v.Video.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionCounts{Likes: 1}, counts)

	counts, err = f.engagement.Like(ctx, v.Video.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionCounts{}, counts)

	_, err = f.engagement.Like(ctx, v.Video.ID, bob.ID)
	require.NoError(t, err)
	counts, err = f.engagement.Dislike(ctx, v.Video.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionCounts{Dislikes: 1}, counts)

	got, err := f.videos.Get(ctx, v.Video.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Video.LikedBy)
	assert.Equal(t, []string{bob.ID}, got.Video.DislikedBy)

	assert.Equal(t, []string{"like->like", "like->", "like->like", "dislike->dislike"}, f.recorder.reactions)

	_, err = f.engagement.Like(ctx, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.engagement.Like(ctx, "bad-id", bob.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.engagement.Like(ctx, v.Video.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	v := f.upload(t, alice, f.channel(t, alice), "Intro to X", "React")

	_, err := f.engagement.AddComment(ctx, v.Video.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	first, err := f.engagement.AddComment(ctx, v.Video.ID, bob.ID, " nice video ")
	require.NoError(t, err)
	assert.Equal(t, "nice video", first.Comment.Text)
	assert.Equal(t, "bob", first.Username)
	second, err := f.engagement.AddComment(ctx, v.Video.ID, alice.ID, "thanks")
	require.NoError(t, err)

	got, err := f.videos.Get(ctx, v.Video.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "bob", got.Comments[0].Username)
	assert.Equal(t, "alice", got.Comments[1].Username)

	// alice cannot remove bob's comment at position 0
	err = f.engagement.DeleteCommentAt(ctx, v.Video.ID, alice.ID, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	err = f.engagement.DeleteCommentAt(ctx, v.Video.ID, alice.ID, 5)
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = f.engagement.DeleteCommentAt(ctx, v.Video.ID, alice.ID, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err = f.videos.Get(ctx, v.Video.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)

	require.NoError(t, f.engagement.DeleteCommentAt(ctx, v.Video.ID, bob.ID, 0))

	err = f.engagement.DeleteComment(ctx, v.Video.ID, bob.ID, second.Comment.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	err = f.engagement.DeleteComment(ctx, v.Video.ID, alice.ID, first.Comment.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, f.engagement.DeleteComment(ctx, v.Video.ID, alice.ID, second.Comment.ID))

	got, err = f.videos.Get(ctx, v.Video.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
	assert.Equal(t, 2, f.recorder.added)
	assert.Equal(t, 2, f.recorder.deleted)
}

func TestUsernameDirectoryUnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	ch := f.channel(t, alice)

	got, err := f.channels.GetByChannelID(ctx, ch.Channel.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerUsername)

	assert.Equal(t, UnknownUsername, usernameOr(map[string]string{}, uuid.NewString()))
}
