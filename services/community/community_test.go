package community

import (
	"context"
	"testing"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenMembersBackend fails every write of the member directory.
type brokenMembersBackend struct {
	*store.MemoryBackend
}

func (b *brokenMembersBackend) Save(ctx context.Context, key string, data []byte) error {
	if key == membersKey {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Save(ctx, key, data)
}

func TestCommunity_AddPostCreatesMember(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryBackend())
	u := &models.User{ID: "u1", Name: "Alice"}

	p, err := s.AddPost(ctx, u, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Content)
	assert.Zero(t, p.Likes)
	assert.False(t, p.Liked)

	_, err = s.AddPost(ctx, u, "again")
	require.NoError(t, err)

	m, err := s.Member(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Posts)
	assert.Equal(t, "Member", m.Role)
	assert.Contains(t, m.Avatar, "seed=Alice")

	posts, err := s.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "again", posts[0].Content)
}

func TestCommunity_AddPostValidation(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryBackend())

	_, err := s.AddPost(ctx, nil, "hello")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = s.AddPost(ctx, &models.User{ID: "u1"}, " ")
	assert.ErrorIs(t, err, ErrContentRequired)

	posts, err := s.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
	members, err := s.Members(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestCommunity_ToggleLike(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryBackend())
	p, err := s.AddPost(ctx, &models.User{ID: "u1", Name: "Alice"}, "hello")
	require.NoError(t, err)

	liked, err := s.ToggleLike(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.Likes)

	unliked, err := s.ToggleLike(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.Likes)

	missing, err := s.ToggleLike(ctx, "post-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommunity_EnsureMemberIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryBackend())
	u := &models.User{ID: "u1", Name: "Alice", ProfileImage: "https://img/a.png"}

	first, err := s.EnsureMember(ctx, u)
	require.NoError(t, err)
	second, err := s.EnsureMember(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, first.JoinDate.Unix(), second.JoinDate.Unix())
	assert.Equal(t, "https://img/a.png", second.Avatar)

	members, err := s.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", TimeAgo(now.Add(-10*time.Second), now))
	assert.Equal(t, "5 minutes ago", TimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2 hours ago", TimeAgo(now.Add(-2*time.Hour), now))
}

func TestCommunity_AddPostLeavesNothingBehindOnFailure(t *testing.T) {
	ctx := context.Background()
	s := New(&brokenMembersBackend{MemoryBackend: store.NewMemoryBackend()})

	p, err := s.AddPost(ctx, &models.User{ID: "u1", Name: "Alice"}, "hello")
	require.Error(t, err)
	assert.Nil(t, p)

	posts, err := s.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
