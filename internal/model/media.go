package model

import "gorm.io/datatypes"

const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaOther = "other"
)

// Media 帖子附带的媒体引用，只保存 URL/类型/元数据，不保存原始字节
type Media struct {
	ID       string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID   string            `gorm:"type:varchar(36);not null;index:idx_media_post" json:"-"`
	Position int               `gorm:"not null" json:"-"`
	URL      string            `gorm:"type:text;not null" json:"url"`
	Type     string            `gorm:"type:varchar(16);not null;default:image" json:"type"`
	Key      string            `gorm:"type:varchar(200)" json:"filename"`
	Meta     datatypes.JSONMap `json:"meta"`
}

func (Media) TableName() string { return "post_media" }
