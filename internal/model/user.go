package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户
type User struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username   string       `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email      string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password   string       `gorm:"type:varchar(100);not null" json:"-"`
	Name       string       `gorm:"type:varchar(80)" json:"name"`
	NameFolded string       `gorm:"type:text" json:"-"`
	Bio        string       `gorm:"type:varchar(320)" json:"bio"`
	Avatar     string       `gorm:"type:text" json:"avatar"`
	AvatarKey  string       `gorm:"type:varchar(200)" json:"-"`
	Location   UserLocation `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	IsVerified bool         `gorm:"not null;default:false" json:"isVerified"`
	Role       string       `gorm:"type:varchar(16);not null;default:user" json:"role"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// BeforeSave 维护折叠后的昵称，用于不区分大小写的搜索
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.NameFolded = Fold(u.Name)
	return nil
}

type UserLocation struct {
	City      string   `gorm:"type:varchar(120)" json:"city,omitempty"`
	Country   string   `gorm:"type:varchar(120)" json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Author 是 users 表的只读投影，用于帖子与评论的作者信息
type Author struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

func (Author) TableName() string { return "users" }
