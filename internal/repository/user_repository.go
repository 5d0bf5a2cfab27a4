package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

// UserRepository 用户仓储
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByUsernameOrEmail 注册前的唯一性检查，未命中返回 gorm.ErrRecordNotFound
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	Search(ctx context.Context, q string, offset, limit int) ([]*model.User, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile 只更新资料字段，不触碰凭据与关系
func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	u.NameFolded = model.Fold(u.Name)
	return r.db.WithContext(ctx).
		Model(u).
		Select("name", "name_folded", "bio", "avatar", "avatar_key", "location_city", "location_country", "location_latitude", "location_longitude").
		Updates(u).Error
}

func (r *userRepository) Search(ctx context.Context, q string, offset, limit int) ([]*model.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.User{})
	if q = strings.TrimSpace(q); q != "" {
		// SQLite 的 LOWER 只处理 ASCII，昵称匹配折叠列
		tx = tx.Where("(LOWER(username) LIKE ? ESCAPE '\\' OR name_folded LIKE ? ESCAPE '\\')",
			"%"+EscapeLike(strings.ToLower(q))+"%", "%"+EscapeLike(model.Fold(q))+"%")
	}
	tx = tx.Session(&gorm.Session{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	users := make([]*model.User, 0)
	err := tx.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	// 保持 ids 的顺序
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]*model.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// EscapeLike 转义 LIKE 通配符，配合 ESCAPE '\' 使用
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
