package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// UserProfile 用户主页
type UserProfile struct {
	*model.User
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	IsFollowing    bool  `json:"isFollowing"`
}

// UpdateProfileInput 为 nil 的字段保持不变
type UpdateProfileInput struct {
	Name      *string  `form:"name"`
	Bio       *string  `form:"bio"`
	City      *string  `form:"city"`
	Country   *string  `form:"country"`
	Latitude  *float64 `form:"latitude"`
	Longitude *float64 `form:"longitude"`
}

type UserPage struct {
	Users []*model.User `json:"users"`
	Meta  PageMeta      `json:"meta"`
}

// UserService 用户资料、搜索与关系列表
type UserService interface {
	Profile(ctx context.Context, username, viewerID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, avatar *Upload) (*model.User, error)
	Search(ctx context.Context, q string, page, limit int) (*UserPage, error)
	Following(ctx context.Context, username string, page, limit int) (*UserPage, error)
	Followers(ctx context.Context, username string, page, limit int) (*UserPage, error)
}

type UserLimits struct {
	Paging        Paging
	MaxAvatarSize int64
}

type userService struct {
	users      repository.UserRepository
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	store      media.Store
	limits     UserLimits
	now        func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	followRepo repository.FollowRepository,
	fanRepo repository.FanRepository,
	store media.Store,
	limits UserLimits,
) UserService {
	return &userService{users: users, followRepo: followRepo, fanRepo: fanRepo, store: store, limits: limits, now: time.Now}
}

func (s *userService) byUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Server("load user failed", err)
	}
	return u, nil
}

func (s *userService) Profile(ctx context.Context, username, viewerID string) (*UserProfile, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p := &UserProfile{User: u}
	if p.FollowersCount, err = s.fanRepo.CountFans(ctx, u.ID); err != nil {
		return nil, apperr.Server("count followers failed", err)
	}
	if p.FollowingCount, err = s.followRepo.CountFollowings(ctx, u.ID); err != nil {
		return nil, apperr.Server("count following failed", err)
	}
	if viewerID != "" && viewerID != u.ID {
		if p.IsFollowing, err = s.followRepo.Exists(ctx, viewerID, u.ID); err != nil {
			return nil, apperr.Server("load relation failed", err)
		}
	}
	return p, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, avatar *Upload) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, apperr.Server("load user failed", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.InvalidInput("name is required")
		}
		if len([]rune(name)) > 80 {
			return nil, apperr.InvalidInput("name must be at most 80 characters")
		}
		u.Name = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len([]rune(bio)) > 320 {
			return nil, apperr.InvalidInput("bio must be at most 320 characters")
		}
		u.Bio = bio
	}
	if in.City != nil {
		u.Location.City = strings.TrimSpace(*in.City)
	}
	if in.Country != nil {
		u.Location.Country = strings.TrimSpace(*in.Country)
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, apperr.InvalidInput("latitude out of range")
		}
		u.Location.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, apperr.InvalidInput("longitude out of range")
		}
		u.Location.Longitude = in.Longitude
	}

	var stored *media.Object
	oldKey := u.AvatarKey
	if avatar != nil {
		if media.KindOf(avatar.ContentType) != model.MediaImage {
			return nil, apperr.InvalidInput("avatar must be an image")
		}
		if avatar.Size > s.limits.MaxAvatarSize {
			return nil, apperr.InvalidInput("avatar is too large")
		}
		if stored, err = putUpload(ctx, s.store, avatar); err != nil {
			return nil, apperr.Server("upload avatar failed", err)
		}
		u.Avatar = stored.URL
		u.AvatarKey = stored.Key
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		if stored != nil {
			removeObjects(s.store, []string{stored.Key})
		}
		return nil, apperr.Server("update profile failed", err)
	}
	// 新头像已落库，旧对象不再被引用
	if stored != nil && oldKey != "" && oldKey != stored.Key {
		removeObjects(s.store, []string{oldKey})
	}
	return u, nil
}

func (s *userService) Search(ctx context.Context, q string, page, limit int) (*UserPage, error) {
	page, limit = s.limits.Paging.Clamp(page, limit)
	users, total, err := s.users.Search(ctx, q, offsetOf(page, limit), limit)
	if err != nil {
		return nil, apperr.Server("search users failed", err)
	}
	return &UserPage{Users: users, Meta: PageMeta{Total: total, Page: page, Limit: limit}}, nil
}

func (s *userService) Following(ctx context.Context, username string, page, limit int) (*UserPage, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	page, limit = s.limits.Paging.Clamp(page, limit)
	edges, err := s.followRepo.ListFollowings(ctx, u.ID, offsetOf(page, limit), limit)
	if err != nil {
		return nil, apperr.Server("list following failed", err)
	}
	total, err := s.followRepo.CountFollowings(ctx, u.ID)
	if err != nil {
		return nil, apperr.Server("count following failed", err)
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FolloweeID
	}
	return s.page(ctx, ids, total, page, limit)
}

func (s *userService) Followers(ctx context.Context, username string, page, limit int) (*UserPage, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	page, limit = s.limits.Paging.Clamp(page, limit)
	edges, err := s.fanRepo.ListFans(ctx, u.ID, offsetOf(page, limit), limit)
	if err != nil {
		return nil, apperr.Server("list followers failed", err)
	}
	total, err := s.fanRepo.CountFans(ctx, u.ID)
	if err != nil {
		return nil, apperr.Server("count followers failed", err)
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FanID
	}
	return s.page(ctx, ids, total, page, limit)
}

func (s *userService) page(ctx context.Context, ids []string, total int64, page, limit int) (*UserPage, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Server("load users failed", err)
	}
	return &UserPage{Users: users, Meta: PageMeta{Total: total, Page: page, Limit: limit}}, nil
}

// removeObjects 尽力删除已存储的对象，失败只记录日志
func removeObjects(store media.Store, keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, k := range keys {
		if err := store.Delete(ctx, k); err != nil {
			logger.Warn("remove media object failed", zap.String("key", k), zap.Error(err))
		}
	}
}
