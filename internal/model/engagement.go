package model

import "time"

// Like 点赞集合，(post_id, user_id) 为联合主键，一个用户对一个帖子至多一条
type Like struct {
	PostID    string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);index:idx_like_user"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "post_likes" }

// Comment 评论，追加后不可修改
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;index:idx_comment_post_created,priority:1" json:"postId"`
	AuthorID  string    `gorm:"type:varchar(36);not null" json:"authorId"`
	Author    *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text      string    `gorm:"type:varchar(1000);not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created,priority:2" json:"createdAt"`
}

func (Comment) TableName() string { return "post_comments" }
