package service

import (
	"strings"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

func (s *ServiceSuite) TestCreatePostWithMediaAndTags() {
	neha := s.seed("neha")
	lat, lng := 27.7, 85.3

	p, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{
		Text:      "  Everest base camp  ",
		Tags:      `["Travel", "#nepal", "travel", " "]`,
		PlaceName: "Kathmandu",
		Latitude:  &lat,
		Longitude: &lng,
	}, []Upload{
		upload("a.jpg", "image/jpeg", "jpeg"),
		upload("b.mp4", "video/mp4", "mp4"),
	})
	s.Require().NoError(err)

	s.Equal("Everest base camp", p.Text)
	s.Equal(model.VisibilityPublic, p.Visibility)
	s.ElementsMatch([]string{"travel", "nepal"}, p.Tags)
	s.Equal("Kathmandu", p.Location.PlaceName)
	s.Require().NotNil(p.Author)
	s.Equal("neha", p.Author.Username)
	s.Require().Len(p.Media, 2)
	s.Equal(model.MediaImage, p.Media[0].Type)
	s.Equal(model.MediaVideo, p.Media[1].Type)
	s.Equal(2, s.store.count())
}

func (s *ServiceSuite) TestCreatePostValidation() {
	neha := s.seed("neha")

	_, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "   "}, nil)
	s.requireKind(err, apperr.KindInvalidInput)

	_, err = s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x", Visibility: "friends"}, nil)
	s.requireKind(err, apperr.KindInvalidInput)

	_, err = s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x"}, []Upload{upload("a.pdf", "application/pdf", "pdf")})
	s.requireKind(err, apperr.KindInvalidInput)

	_, err = s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x"}, []Upload{upload("a.jpg", "image/jpeg", strings.Repeat("x", 2048))})
	s.requireKind(err, apperr.KindInvalidInput)

	many := make([]Upload, 7)
	for i := range many {
		many[i] = upload("a.jpg", "image/jpeg", "x")
	}
	_, err = s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x"}, many)
	s.requireKind(err, apperr.KindInvalidInput)
	s.Equal(0, s.store.count())

	long, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: strings.Repeat("a", 6000)}, nil)
	s.Require().NoError(err)
	s.Len(long.Text, 5000)
}

func (s *ServiceSuite) TestCreatePostRemovesUploadsOnFailure() {
	neha := s.seed("neha")

	s.store.failOn = 2
	_, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x"}, []Upload{
		upload("a.jpg", "image/jpeg", "a"),
		upload("b.jpg", "image/jpeg", "b"),
	})
	s.requireKind(err, apperr.KindServer)
	s.Equal(0, s.store.count(), "first upload must be removed")

	// 事务失败时同样清理
	s.store.failOn = 0
	s.Require().NoError(s.db.Migrator().DropTable(&model.PostTag{}))
	_, err = s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x", Tags: "travel"}, []Upload{
		upload("a.jpg", "image/jpeg", "a"),
	})
	s.requireKind(err, apperr.KindServer)
	s.Equal(0, s.store.count())

	var n int64
	s.Require().NoError(s.db.Model(&model.Post{}).Count(&n).Error)
	s.Zero(n)
}

func (s *ServiceSuite) TestDeletePostPermissions() {
	neha, rajan, admin := s.seed("neha"), s.seed("rajan"), s.seed("admin")
	s.Require().NoError(s.db.Model(admin).Update("role", model.RoleAdmin).Error)

	p, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "x"}, []Upload{upload("a.jpg", "image/jpeg", "a")})
	s.Require().NoError(err)
	_, err = s.engage.AddComment(s.ctx, rajan.ID, p.ID, "nice")
	s.Require().NoError(err)

	err = s.post.Delete(s.ctx, rajan.ID, p.ID)
	s.requireKind(err, apperr.KindForbidden)

	s.Require().NoError(s.post.Delete(s.ctx, neha.ID, p.ID))
	_, err = s.post.Get(s.ctx, p.ID)
	s.requireKind(err, apperr.KindNotFound)
	s.Equal(0, s.store.count())

	var comments int64
	s.Require().NoError(s.db.Model(&model.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
	s.Zero(comments)

	other := s.publish(rajan, "mine")
	s.Require().NoError(s.post.Delete(s.ctx, admin.ID, other.ID))

	err = s.post.Delete(s.ctx, neha.ID, "missing")
	s.requireKind(err, apperr.KindNotFound)
}

func (s *ServiceSuite) TestRepost() {
	neha, rajan := s.seed("neha"), s.seed("rajan")
	orig, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "view", Tags: "travel"}, []Upload{upload("a.jpg", "image/jpeg", "a")})
	s.Require().NoError(err)

	rp, err := s.post.Repost(s.ctx, rajan.ID, orig.ID, "look at this")
	s.Require().NoError(err)
	s.True(rp.IsRepost)
	s.Require().NotNil(rp.RepostOf)
	s.Equal(orig.ID, *rp.RepostOf)
	s.Equal([]string{"travel"}, rp.Tags)
	s.Require().Len(rp.Media, 1)
	s.Equal(orig.Media[0].URL, rp.Media[0].URL)

	got, err := s.post.Get(s.ctx, orig.ID)
	s.Require().NoError(err)
	s.EqualValues(1, got.RepostsCount)

	notes := s.notes.all()
	s.Require().Len(notes, 1)
	s.Equal(notify.TypeRepost, notes[0].n.Type)

	// 删除转发不影响原帖的媒体对象
	s.Require().NoError(s.post.Delete(s.ctx, rajan.ID, rp.ID))
	s.Equal(1, s.store.count())

	_, err = s.post.Repost(s.ctx, rajan.ID, "missing", "")
	s.requireKind(err, apperr.KindNotFound)
}

func (s *ServiceSuite) TestListByUserHasMore() {
	neha := s.seed("neha")
	for i := 0; i < 5; i++ {
		s.publish(neha, "post")
	}
	_, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "secret", Visibility: "private"}, nil)
	s.Require().NoError(err)

	page, err := s.post.ListByUser(s.ctx, neha.ID, 1, 2)
	s.Require().NoError(err)
	s.Len(page.Posts, 2)
	s.EqualValues(5, page.Meta.Total)
	s.True(page.Meta.HasMore)

	last, err := s.post.ListByUser(s.ctx, neha.ID, 3, 2)
	s.Require().NoError(err)
	s.Len(last.Posts, 1)
	s.False(last.Meta.HasMore)
}

func (s *ServiceSuite) TestParseTags() {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"travel, Food ,travel", []string{"travel", "food"}},
		{`["#Travel","nepal"]`, []string{"travel", "nepal"}},
		{"[broken", []string{"broken"}},
		{" , ,", []string{}},
	}
	for _, c := range cases {
		s.Equal(c.want, ParseTags(c.raw), c.raw)
	}
	s.Len(ParseTags(strings.Repeat("x", 100))[0], maxTagLength)
}
