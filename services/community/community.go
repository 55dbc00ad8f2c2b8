package community

import (
	"context"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	postsKey    = "community:posts"
	membersKey  = "community:members"
	defaultRole = "Member"
)

var (
	ErrAuthRequired    = errors.New("please sign in to post")
	ErrContentRequired = common.NewValidationError("content", "post content is required")
)

// Community holds the posts feed and the member directory.
type Community struct {
	posts   *store.Collection[models.CommunityPost]
	members *store.Collection[models.CommunityMember]
	now     func() time.Time
}

func New(b store.Backend) *Community {
	return &Community{
		posts:   store.NewCollection(b, func(p *models.CommunityPost) string { return p.ID }),
		members: store.NewCollection(b, func(m *models.CommunityMember) string { return m.ID }),
		now:     time.Now,
	}
}

// Posts are returned newest first.
func (s *Community) Posts(ctx context.Context) ([]models.CommunityPost, error) {
	return s.posts.List(ctx, postsKey)
}

// AddPost publishes content as user, creating the member profile on first post.
func (s *Community) AddPost(ctx context.Context, user *models.User, content string) (*models.CommunityPost, error) {
	if user == nil || user.ID == "" {
		return nil, ErrAuthRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	p := models.CommunityPost{
		ID:        "post-" + uuid.NewString(),
		User:      user.Author(),
		Content:   content,
		Timestamp: s.now(),
	}
	if _, _, err := s.posts.Prepend(ctx, postsKey, p); err != nil {
		return nil, errors.Wrap(err, "failed to store post")
	}
	if _, err := s.members.Upsert(ctx, membersKey, s.newMember(user), func(m *models.CommunityMember) {
		m.Posts++
	}); err != nil {
		if _, rerr := s.posts.Remove(ctx, postsKey, p.ID); rerr != nil {
			log.WithError(rerr).WithField("post", p.ID).Error("failed to roll back community post")
		}
		return nil, errors.Wrap(err, "failed to update member post count")
	}
	log.WithField("user", user.ID).WithField("post", p.ID).Info("community post added")
	return &p, nil
}

// ToggleLike flips the liked flag of the post and adjusts its like count.
// It returns nil when the post does not exist.
func (s *Community) ToggleLike(ctx context.Context, postID string) (*models.CommunityPost, error) {
	return s.posts.Update(ctx, postsKey, postID, func(p *models.CommunityPost) {
		if p.Liked {
			p.Likes--
		} else {
			p.Likes++
		}
		p.Liked = !p.Liked
	})
}

func (s *Community) Members(ctx context.Context) ([]models.CommunityMember, error) {
	return s.members.List(ctx, membersKey)
}

// Member returns nil for unknown ids.
func (s *Community) Member(ctx context.Context, id string) (*models.CommunityMember, error) {
	return s.members.Find(ctx, membersKey, id)
}

// EnsureMember returns the member profile of user, creating it when missing.
func (s *Community) EnsureMember(ctx context.Context, user *models.User) (*models.CommunityMember, error) {
	if user == nil || user.ID == "" {
		return nil, ErrAuthRequired
	}
	m, _, err := s.members.Add(ctx, membersKey, s.newMember(user))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create member")
	}
	return &m, nil
}

func (s *Community) newMember(user *models.User) models.CommunityMember {
	return models.CommunityMember{
		ID:       user.ID,
		Name:     user.Author().Name,
		Avatar:   user.Avatar(),
		Role:     defaultRole,
		JoinDate: s.now(),
	}
}

// TimeAgo renders a post timestamp the way the feed shows it.
func TimeAgo(t, now time.Time) string {
	if now.Sub(t) < time.Minute {
		return "Just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
