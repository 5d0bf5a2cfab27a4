package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/internal/service"
)

// Handler 聚合所有 HTTP 处理函数依赖的服务
type Handler struct {
	authService   service.AuthService
	userService   service.UserService
	relService    service.RelationshipService
	postService   service.PostService
	engageService service.EngagementService
	feedService   service.FeedService

	registry  *notify.Registry
	opener    media.Opener
	heartbeat time.Duration
	limits    UploadLimits
}

// UploadLimits 请求体大小上限，超过时直接拒绝
type UploadLimits struct {
	MaxPostFiles  int
	MaxFileSize   int64
	MaxAvatarSize int64
}

type Deps struct {
	Auth       service.AuthService
	Users      service.UserService
	Relations  service.RelationshipService
	Posts      service.PostService
	Engagement service.EngagementService
	Feed       service.FeedService
	Registry   *notify.Registry
	// Opener 为 nil 时 /media/:id 返回 404
	Opener    media.Opener
	Heartbeat time.Duration
	Limits    UploadLimits
}

func New(d Deps) *Handler {
	hb := d.Heartbeat
	if hb <= 0 {
		hb = 25 * time.Second
	}
	return &Handler{
		authService:   d.Auth,
		userService:   d.Users,
		relService:    d.Relations,
		postService:   d.Posts,
		engageService: d.Engagement,
		feedService:   d.Feed,
		registry:      d.Registry,
		opener:        d.Opener,
		heartbeat:     hb,
		limits:        d.Limits,
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
