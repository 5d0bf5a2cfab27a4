package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

// PostPage feed 与 explore 的返回结构，Posts 永不为 nil
type PostPage struct {
	Posts []*model.Post `json:"posts"`
	Meta  PageMeta      `json:"meta"`
}

// FeedService 拉模式 feed：查询时按关注列表过滤公开帖子
type FeedService interface {
	// Feed 返回 viewer 自己及其关注者的公开帖子，按 createdAt、id 倒序
	Feed(ctx context.Context, viewerID string, page, limit int) (*PostPage, error)
	// Explore 无需登录；tag 精确匹配并忽略 q，否则 q 对正文或标签做子串匹配
	Explore(ctx context.Context, q, tag string, page, limit int) (*PostPage, error)
}

type feedService struct {
	posts     repository.PostRepository
	followees FolloweeSource
	paging    Paging
}

func NewFeedService(posts repository.PostRepository, followees FolloweeSource, paging Paging) FeedService {
	return &feedService{posts: posts, followees: followees, paging: paging}
}

var tracer = otel.Tracer("github.com/d60-Lab/socialfeed/internal/service")

func (s *feedService) Feed(ctx context.Context, viewerID string, page, limit int) (*PostPage, error) {
	ctx, span := tracer.Start(ctx, "FeedService.Feed")
	defer span.End()

	ids, err := s.followees.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, apperr.Server("load following failed", err)
	}
	span.SetAttributes(attribute.Int("feed.following", len(ids)))
	authors := make([]string, 0, len(ids)+1)
	authors = append(authors, viewerID)
	authors = append(authors, ids...)
	return s.find(ctx, repository.PostFilter{Visibility: model.VisibilityPublic, AuthorIDs: authors}, page, limit)
}

func (s *feedService) Explore(ctx context.Context, q, tag string, page, limit int) (*PostPage, error) {
	ctx, span := tracer.Start(ctx, "FeedService.Explore")
	defer span.End()

	f := repository.PostFilter{Visibility: model.VisibilityPublic}
	// 与入库时相同的规范化，包括长度截断
	if t := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))); t != "" {
		f.Tag = truncateRunes(t, maxTagLength)
	} else {
		f.Search = strings.TrimSpace(q)
	}
	return s.find(ctx, f, page, limit)
}

func (s *feedService) find(ctx context.Context, f repository.PostFilter, page, limit int) (*PostPage, error) {
	page, limit = s.paging.Clamp(page, limit)
	posts, total, err := s.posts.Find(ctx, f, offsetOf(page, limit), limit)
	if err != nil {
		return nil, apperr.Server("load posts failed", err)
	}
	return &PostPage{Posts: posts, Meta: PageMeta{Total: total, Page: page, Limit: limit}}, nil
}
