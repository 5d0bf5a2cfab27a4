package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

const maxTagLength = 64

// Upload 待存储的文件，Open 每次返回一个新的读取流
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func putUpload(ctx context.Context, store media.Store, u *Upload) (*media.Object, error) {
	rc, err := u.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", u.Filename, err)
	}
	defer rc.Close()
	return store.Put(ctx, u.Filename, u.ContentType, rc)
}

// CreatePostInput Tags 可以是逗号分隔的字符串或 JSON 数组
type CreatePostInput struct {
	Text       string   `form:"text"`
	Tags       string   `form:"tags"`
	Visibility string   `form:"visibility"`
	PlaceName  string   `form:"placeName"`
	Latitude   *float64 `form:"latitude"`
	Longitude  *float64 `form:"longitude"`
}

type UserPostMeta struct {
	PageMeta
	HasMore bool `json:"hasMore"`
}

type UserPostPage struct {
	Posts []*model.Post `json:"posts"`
	Meta  UserPostMeta  `json:"meta"`
}

type PostLimits struct {
	Paging        Paging
	MaxTextLength int
	MaxFiles      int
	MaxFileSize   int64
}

// PostService 帖子的创建、读取、删除与转发
type PostService interface {
	// Create 先上传媒体再提交事务，任一步失败都会删除已上传的对象
	Create(ctx context.Context, authorID string, in CreatePostInput, files []Upload) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	ListByUser(ctx context.Context, userID string, page, limit int) (*UserPostPage, error)
	// Delete 仅作者或管理员可删除
	Delete(ctx context.Context, viewerID, postID string) error
	Repost(ctx context.Context, viewerID, postID, text string) (*model.Post, error)
}

type postService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	store    media.Store
	notifier Notifier
	limits   PostLimits
	now      func() time.Time
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	store media.Store,
	notifier Notifier,
	limits PostLimits,
) PostService {
	return &postService{
		posts:    posts,
		users:    users,
		store:    store,
		notifier: notifierOrNop(notifier),
		limits:   limits,
		now:      time.Now,
	}
}

// ParseTags 规范化标签：去掉 #、转小写、去重，保持首次出现的顺序
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			parts = strings.Split(strings.Trim(raw, "[]"), ",")
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(p), `"#`)))
		t = truncateRunes(t, maxTagLength)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func (s *postService) validateFiles(files []Upload) error {
	if len(files) > s.limits.MaxFiles {
		return apperr.InvalidInput(fmt.Sprintf("at most %d media files are allowed", s.limits.MaxFiles))
	}
	for _, f := range files {
		switch media.KindOf(f.ContentType) {
		case model.MediaImage, model.MediaVideo:
		default:
			return apperr.InvalidInput("only image and video files are allowed")
		}
		if f.Size > s.limits.MaxFileSize {
			return apperr.InvalidInput(fmt.Sprintf("%s is too large", f.Filename))
		}
	}
	return nil
}

func (s *postService) Create(ctx context.Context, authorID string, in CreatePostInput, files []Upload) (*model.Post, error) {
	text := truncateRunes(strings.TrimSpace(in.Text), s.limits.MaxTextLength)
	if text == "" && len(files) == 0 {
		return nil, apperr.InvalidInput("post must have text or media")
	}
	visibility := strings.ToLower(strings.TrimSpace(in.Visibility))
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if !model.ValidVisibility(visibility) {
		return nil, apperr.InvalidInput("visibility must be public, followers or private")
	}
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Server("create post failed", err)
	}
	now := s.now().UTC()
	p := &model.Post{
		ID:         id.String(),
		AuthorID:   authorID,
		Text:       text,
		Visibility: visibility,
		Location: model.PostLocation{
			PlaceName: strings.TrimSpace(in.PlaceName),
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, t := range ParseTags(in.Tags) {
		p.TagRows = append(p.TagRows, model.PostTag{PostID: p.ID, Tag: t})
	}

	// 先落盘媒体，失败时删除已写入的对象
	keys := make([]string, 0, len(files))
	for i := range files {
		obj, err := putUpload(ctx, s.store, &files[i])
		if err != nil {
			removeObjects(s.store, keys)
			return nil, apperr.Server("upload media failed", err)
		}
		keys = append(keys, obj.Key)
		p.Media = append(p.Media, model.Media{
			ID:       uuid.NewString(),
			PostID:   p.ID,
			Position: i,
			URL:      obj.URL,
			Type:     obj.Type,
			Key:      obj.Key,
			Meta: datatypes.JSONMap{
				"contentType":  obj.ContentType,
				"size":         obj.Size,
				"originalName": files[i].Filename,
			},
		})
	}

	if err := s.posts.Create(ctx, p); err != nil {
		removeObjects(s.store, keys)
		return nil, apperr.Server("create post failed", err)
	}
	return s.load(ctx, p.ID, false)
}

func (s *postService) load(ctx context.Context, id string, withComments bool) (*model.Post, error) {
	p, err := s.posts.GetByID(ctx, id, withComments)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Server("load post failed", err)
	}
	return p, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.load(ctx, id, true)
}

func (s *postService) ListByUser(ctx context.Context, userID string, page, limit int) (*UserPostPage, error) {
	page, limit = s.limits.Paging.Clamp(page, limit)
	posts, total, err := s.posts.Find(ctx, repository.PostFilter{
		Visibility: model.VisibilityPublic,
		AuthorIDs:  []string{userID},
	}, offsetOf(page, limit), limit)
	if err != nil {
		return nil, apperr.Server("list posts failed", err)
	}
	return &UserPostPage{
		Posts: posts,
		Meta: UserPostMeta{
			PageMeta: PageMeta{Total: total, Page: page, Limit: limit},
			HasMore:  total > int64(page*limit),
		},
	}, nil
}

func (s *postService) Delete(ctx context.Context, viewerID, postID string) error {
	p, err := s.load(ctx, postID, false)
	if err != nil {
		return err
	}
	if p.AuthorID != viewerID {
		viewer, err := s.users.GetByID(ctx, viewerID)
		if err != nil && !isNotFound(err) {
			return apperr.Server("load user failed", err)
		}
		if viewer == nil || viewer.Role != model.RoleAdmin {
			return apperr.Forbidden("you can only delete your own posts")
		}
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return apperr.Server("delete post failed", err)
	}
	// 转发与原帖共享媒体对象，只有原帖才删除
	if !p.IsRepost {
		keys := make([]string, 0, len(p.Media))
		for _, m := range p.Media {
			if m.Key != "" {
				keys = append(keys, m.Key)
			}
		}
		removeObjects(s.store, keys)
	}
	return nil
}

func (s *postService) Repost(ctx context.Context, viewerID, postID, text string) (*model.Post, error) {
	orig, err := s.load(ctx, postID, false)
	if err != nil {
		return nil, err
	}
	if orig.Visibility != model.VisibilityPublic && orig.AuthorID != viewerID {
		return nil, apperr.Forbidden("this post cannot be reposted")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Server("repost failed", err)
	}
	now := s.now().UTC()
	origID := orig.ID
	p := &model.Post{
		ID:         id.String(),
		AuthorID:   viewerID,
		Text:       truncateRunes(strings.TrimSpace(text), s.limits.MaxTextLength),
		Location:   orig.Location,
		IsRepost:   true,
		RepostOf:   &origID,
		Visibility: orig.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, m := range orig.Media {
		p.Media = append(p.Media, model.Media{
			ID:       uuid.NewString(),
			PostID:   p.ID,
			Position: m.Position,
			URL:      m.URL,
			Type:     m.Type,
			Key:      m.Key,
			Meta:     m.Meta,
		})
	}
	for _, t := range orig.Tags {
		p.TagRows = append(p.TagRows, model.PostTag{PostID: p.ID, Tag: t})
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, apperr.Server("repost failed", err)
	}

	if orig.AuthorID != viewerID {
		notifyAuthor(ctx, s.users, s.notifier, orig.AuthorID, viewerID, notify.Notification{
			Type:  notify.TypeRepost,
			Title: "New repost",
			Body:  "%s reposted your post",
		}, orig.ID)
	}
	return s.load(ctx, p.ID, false)
}

// notifyAuthor 通知帖子作者，取不到操作者时用 "someone"
func notifyAuthor(ctx context.Context, users repository.UserRepository, n Notifier, authorID, actorID string, tmpl notify.Notification, postID string) {
	name := "someone"
	if actor, err := users.GetByID(ctx, actorID); err == nil {
		name = actor.Username
	}
	tmpl.Body = fmt.Sprintf(tmpl.Body, name)
	tmpl.Data = map[string]interface{}{"postId": postID, "userId": actorID, "username": name}
	n.Notify(authorID, tmpl)
}
