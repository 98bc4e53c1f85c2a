package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "daycare", zap.NewNop())
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "announcements:Harehiet", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "announcements:Harehiet", []string{"a"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "announcements:Harehiet"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "announcements:*"))
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryKey(t *testing.T) {
	assert.Equal(t, "daycare:announcements:Harehiet", NewCacheRepository(nil, "daycare:", nil).Key("announcements:Harehiet"))
	assert.Equal(t, "announcements:Harehiet", NewCacheRepository(nil, "", nil).Key("announcements:Harehiet"))
}
