package service

import (
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

// assertEdge 检查两侧状态一致
func (s *ServiceSuite) assertEdge(a, b *model.User, want bool) {
	following, err := s.follows.Exists(s.ctx, a.ID, b.ID)
	s.Require().NoError(err)
	follower, err := s.fans.Exists(s.ctx, b.ID, a.ID)
	s.Require().NoError(err)
	s.Equal(want, following, "following side")
	s.Equal(want, follower, "follower side")
}

func (s *ServiceSuite) TestFollowIsSymmetricAndIdempotent() {
	rajan, neha := s.seed("rajan"), s.seed("neha")

	res, err := s.rel.Follow(s.ctx, rajan.ID, "Neha")
	s.Require().NoError(err)
	s.True(res.Following)
	s.EqualValues(1, res.FollowersCount)
	s.assertEdge(rajan, neha, true)

	res, err = s.rel.Follow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	s.EqualValues(1, res.FollowersCount)
	n, err := s.follows.CountFollowings(s.ctx, rajan.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	// 只有新建关系时才通知
	notes := s.notes.all()
	s.Require().Len(notes, 1)
	s.Equal(neha.ID, notes[0].userID)
	s.Equal(notify.TypeFollow, notes[0].n.Type)
	s.Contains(notes[0].n.Body, "rajan")

	res, err = s.rel.Unfollow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	s.False(res.Following)
	s.EqualValues(0, res.FollowersCount)
	s.assertEdge(rajan, neha, false)

	_, err = s.rel.Unfollow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	s.assertEdge(rajan, neha, false)
}

func (s *ServiceSuite) TestFollowErrors() {
	rajan := s.seed("rajan")

	_, err := s.rel.Follow(s.ctx, rajan.ID, "rajan")
	s.requireKind(err, apperr.KindInvalidInput)

	_, err = s.rel.Follow(s.ctx, rajan.ID, "nobody")
	s.requireKind(err, apperr.KindNotFound)

	_, err = s.rel.Unfollow(s.ctx, rajan.ID, "nobody")
	s.requireKind(err, apperr.KindNotFound)
}

func (s *ServiceSuite) TestFollowRollsBackBothSides() {
	rajan, neha := s.seed("rajan"), s.seed("neha")
	s.Require().NoError(s.db.Migrator().DropTable(&model.Fan{}))

	_, err := s.rel.Follow(s.ctx, rajan.ID, "neha")
	s.requireKind(err, apperr.KindServer)

	ok, err := s.follows.Exists(s.ctx, rajan.ID, neha.ID)
	s.Require().NoError(err)
	s.False(ok, "following side must not survive a failed follower write")
	s.Empty(s.notes.all())
}

func (s *ServiceSuite) TestIsFollowing() {
	rajan, neha := s.seed("rajan"), s.seed("neha")
	_, err := s.rel.Follow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)

	ok, err := s.rel.IsFollowing(s.ctx, rajan.ID, neha.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.rel.IsFollowing(s.ctx, neha.ID, rajan.ID)
	s.Require().NoError(err)
	s.False(ok)
}
