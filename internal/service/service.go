package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

// Notifier 接收实时通知；投递失败不影响业务结果
type Notifier interface {
	Notify(userID string, n notify.Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, notify.Notification) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// FolloweeSource 提供 feed 所需的关注列表，可以是仓储或 Redis 缓存
type FolloweeSource interface {
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
}

// FollowingInvalidator 在关系变更后清理缓存
type FollowingInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Paging 分页策略：page < 1 视为 1，limit 缺省取 Default，超过 Max 截断
type Paging struct {
	Default int
	Max     int
}

func (p Paging) Clamp(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = p.Default
	}
	if limit > p.Max {
		limit = p.Max
	}
	if limit < 1 {
		limit = 1
	}
	return page, limit
}

// PageMeta 分页元信息
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func offsetOf(page, limit int) int { return (page - 1) * limit }

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// RegisterValidations 注册自定义校验规则，gin 的 binding 引擎与服务层共用
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) >= 3 && len(s) <= 30 && usernamePattern.MatchString(s)
	})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// ValidationMessage 把校验错误转成面向用户的提示
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "username":
		return field + " must be 3-30 characters of a-z, 0-9 or _"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return apperr.InvalidInput(ValidationMessage(err))
	}
	return nil
}

// truncateRunes 按字符截断
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
