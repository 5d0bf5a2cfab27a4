package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// ValidVisibility reports whether v is one of the known visibility levels.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// Post 帖子。ID 使用 UUIDv7，按 ID 排序即按插入顺序排序。
// LikesCount/CommentsCount/RepostsCount 不落库，查询时由子查询计算。
type Post struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID   string       `gorm:"type:varchar(36);not null;index:idx_post_author_created,priority:1" json:"authorId"`
	Author     *Author      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text       string       `gorm:"type:text" json:"text"`
	TextFolded string       `gorm:"type:text" json:"-"`
	Media      []Media      `gorm:"foreignKey:PostID" json:"media"`
	Location   PostLocation `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	TagRows    []PostTag    `gorm:"foreignKey:PostID" json:"-"`
	Tags       []string     `gorm:"-" json:"tags"`
	Comments   []Comment    `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	IsRepost   bool         `gorm:"not null;default:false" json:"isRepost"`
	RepostOf   *string      `gorm:"type:varchar(36);index" json:"repostOf"`
	Visibility string       `gorm:"type:varchar(16);not null;default:public;index" json:"visibility"`

	LikesCount    int64 `gorm:"->;-:migration" json:"likesCount"`
	CommentsCount int64 `gorm:"->;-:migration" json:"commentsCount"`
	RepostsCount  int64 `gorm:"->;-:migration" json:"repostsCount"`

	CreatedAt time.Time `gorm:"index;index:idx_post_author_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// BeforeSave 维护折叠后的搜索列
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.TextFolded = Fold(p.Text)
	return nil
}

// AfterFind 将标签行展开为字符串切片
func (p *Post) AfterFind(tx *gorm.DB) error {
	p.Tags = make([]string, 0, len(p.TagRows))
	for _, t := range p.TagRows {
		p.Tags = append(p.Tags, t.Tag)
	}
	if p.Media == nil {
		p.Media = []Media{}
	}
	return nil
}

type PostLocation struct {
	PlaceName string   `gorm:"type:varchar(200)" json:"placeName,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// PostTag 标签集合，(post_id, tag) 唯一
type PostTag struct {
	PostID string `gorm:"primaryKey;type:varchar(36)"`
	Tag    string `gorm:"primaryKey;type:varchar(64);index:idx_post_tag"`
}

func (PostTag) TableName() string { return "post_tags" }
