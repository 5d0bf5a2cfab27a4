package service

import (
	"strings"

	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

func (s *ServiceSuite) TestToggleLikeTwiceRestoresState() {
	neha, rajan := s.seed("neha"), s.seed("rajan")
	p := s.publish(neha, "sunset")

	first, err := s.engage.ToggleLike(s.ctx, rajan.ID, p.ID)
	s.Require().NoError(err)
	s.True(first.Liked)
	s.EqualValues(1, first.LikesCount)

	second, err := s.engage.ToggleLike(s.ctx, rajan.ID, p.ID)
	s.Require().NoError(err)
	s.False(second.Liked)
	s.EqualValues(0, second.LikesCount)

	got, err := s.post.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.EqualValues(0, got.LikesCount)

	// 点赞通知作者，取消点赞不通知
	notes := s.notes.all()
	s.Require().Len(notes, 1)
	s.Equal(neha.ID, notes[0].userID)
	s.Equal(notify.TypeLike, notes[0].n.Type)
	s.Equal(p.ID, notes[0].n.Data["postId"])
}

func (s *ServiceSuite) TestToggleLikeOwnPostIsSilent() {
	neha := s.seed("neha")
	p := s.publish(neha, "selfie")

	res, err := s.engage.ToggleLike(s.ctx, neha.ID, p.ID)
	s.Require().NoError(err)
	s.True(res.Liked)
	s.Empty(s.notes.all())
}

func (s *ServiceSuite) TestToggleLikeMissingPost() {
	rajan := s.seed("rajan")
	_, err := s.engage.ToggleLike(s.ctx, rajan.ID, "missing")
	s.requireKind(err, apperr.KindNotFound)
}

func (s *ServiceSuite) TestAddCommentAppendsOne() {
	neha, rajan := s.seed("neha"), s.seed("rajan")
	p := s.publish(neha, "trip")

	_, err := s.engage.AddComment(s.ctx, neha.ID, p.ID, "first")
	s.Require().NoError(err)
	before, err := s.post.Get(s.ctx, p.ID)
	s.Require().NoError(err)

	c, err := s.engage.AddComment(s.ctx, rajan.ID, p.ID, "  hello  ")
	s.Require().NoError(err)
	s.Equal("hello", c.Text)
	s.Require().NotNil(c.Author)
	s.Equal("rajan", c.Author.Username)

	after, err := s.post.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(before.CommentsCount+1, after.CommentsCount)
	s.Require().Len(after.Comments, 2)
	s.Equal(c.ID, after.Comments[len(after.Comments)-1].ID)
	s.Equal("rajan", after.Comments[1].Author.Username)

	notes := s.notes.all()
	s.Require().Len(notes, 1, "self comments are not notified")
	s.Equal(notify.TypeComment, notes[0].n.Type)
}

func (s *ServiceSuite) TestAddCommentValidation() {
	neha := s.seed("neha")
	p := s.publish(neha, "trip")

	_, err := s.engage.AddComment(s.ctx, neha.ID, p.ID, " \n\t ")
	s.requireKind(err, apperr.KindInvalidInput)

	_, err = s.engage.AddComment(s.ctx, neha.ID, "missing", "hi")
	s.requireKind(err, apperr.KindNotFound)

	long := strings.Repeat("é", maxCommentLength+50)
	c, err := s.engage.AddComment(s.ctx, neha.ID, p.ID, long)
	s.Require().NoError(err)
	s.Equal(maxCommentLength, len([]rune(c.Text)))
}
