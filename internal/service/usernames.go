package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"vidhub/internal/cache"
	"vidhub/internal/repository"
)

// UnknownUsername is shown for ids that no longer resolve to a user.
const UnknownUsername = "Unknown User"

// UsernameDirectory resolves user ids to usernames for display, one batch per request.
type UsernameDirectory struct {
	users  repository.UserRepository
	cache  cache.UsernameCache
	logger logrus.FieldLogger
}

func NewUsernameDirectory(users repository.UserRepository, c cache.UsernameCache, logger logrus.FieldLogger) *UsernameDirectory {
	if c == nil {
		c = cache.NewMemory(cache.DefaultTTL)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UsernameDirectory{users: users, cache: c, logger: logger}
}

// Resolve returns usernames for the distinct non-empty ids. Cache failures degrade to
// a database lookup; unknown ids are absent from the result.
func (d *UsernameDirectory) Resolve(ctx context.Context, ids []string) (map[string]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[string]string{}, nil
	}

	names, err := d.cache.GetMany(ctx, unique)
	if err != nil {
		d.logger.WithError(err).Warn("username cache read failed")
		names = map[string]string{}
	}

	var missing []string
	for _, id := range unique {
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := d.users.UsernamesByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := d.cache.SetMany(ctx, fetched); err != nil {
		d.logger.WithError(err).Warn("username cache write failed")
	}
	for id, name := range fetched {
		names[id] = name
	}
	return names, nil
}

func usernameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return UnknownUsername
}
