// Package service contains the business logic behind the HTTP handlers.
package service

import (
	"context"
	"sort"
	"time"

	"microblog/internal/models"
	"microblog/internal/observability"
	"microblog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// maxFeedPage bounds page*perPage so the candidate fetch stays finite.
const maxFeedPage = 100000

// FeedService composes the paginated post listings: the home feed, explore and profile timelines.
type FeedService struct {
	postRepo repository.PostRepository
	perPage  int
}

// NewFeedService returns a FeedService serving pages of perPage posts.
func NewFeedService(postRepo repository.PostRepository, perPage int) *FeedService {
	return &FeedService{postRepo: postRepo, perPage: perPage}
}

// PerPage returns the fixed page size.
func (s *FeedService) PerPage() int {
	return s.perPage
}

// Feed returns page number page of the posts written by userID or by anyone userID follows,
// newest first. A page past the end is empty, not an error.
func (s *FeedService) Feed(ctx context.Context, userID uint, page int) (_ *models.Page[*models.Post], err error) {
	defer observability.ObserveSince(observability.FeedComposeLatency, "home", time.Now())
	ctx, span := observability.StartSpan(ctx, "feed", "compose",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("feed.page", page),
	)
	defer func() { observability.EndSpan(span, err) }()

	if page < 1 {
		page = 1
	}
	if page > maxFeedPage {
		return models.NewPage([]*models.Post(nil), page, s.perPage), nil
	}

	// The first page*perPage+1 rows of the union are always among the first
	// page*perPage+1 rows of each side.
	limit := page*s.perPage + 1

	followed, err := s.postRepo.ListFollowedAuthorsPosts(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	own, err := s.postRepo.ListByAuthors(ctx, []uint{userID}, limit)
	if err != nil {
		return nil, err
	}

	merged := mergeNewestFirst(followed, own)
	span.SetAttributes(attribute.Int("feed.candidates", len(merged)))
	return models.NewPage(merged, page, s.perPage), nil
}

// Explore returns page number page of every post, newest first.
func (s *FeedService) Explore(ctx context.Context, page int) (*models.Page[*models.Post], error) {
	defer observability.ObserveSince(observability.FeedComposeLatency, "explore", time.Now())

	page, offset := s.window(page)
	posts, err := s.postRepo.ListAll(ctx, s.perPage+1, offset)
	if err != nil {
		return nil, err
	}
	return models.NewPageFromWindow(posts, page, s.perPage), nil
}

// UserPosts returns page number page of the posts written by userID, newest first.
func (s *FeedService) UserPosts(ctx context.Context, userID uint, page int) (*models.Page[*models.Post], error) {
	defer observability.ObserveSince(observability.FeedComposeLatency, "profile", time.Now())

	page, offset := s.window(page)
	posts, err := s.postRepo.ListByUser(ctx, userID, s.perPage+1, offset)
	if err != nil {
		return nil, err
	}
	return models.NewPageFromWindow(posts, page, s.perPage), nil
}

func (s *FeedService) window(page int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxFeedPage {
		page = maxFeedPage + 1
	}
	return page, (page - 1) * s.perPage
}

// mergeNewestFirst returns the union of the given listings keyed by post id,
// ordered by timestamp then id, both descending.
func mergeNewestFirst(lists ...[]*models.Post) []*models.Post {
	seen := make(map[uint]struct{})
	var merged []*models.Post
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Newer(merged[j])
	})
	return merged
}
