package service

import (
	"strings"

	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

func strPtr(s string) *string { return &s }

func (s *ServiceSuite) TestProfileCounts() {
	rajan, neha := s.seed("rajan"), s.seed("neha")
	s.seed("milanb")
	_, err := s.rel.Follow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	_, err = s.rel.Follow(s.ctx, rajan.ID, "milanb")
	s.Require().NoError(err)

	p, err := s.user.Profile(s.ctx, "NEHA", rajan.ID)
	s.Require().NoError(err)
	s.Equal(neha.ID, p.ID)
	s.EqualValues(1, p.FollowersCount)
	s.EqualValues(0, p.FollowingCount)
	s.True(p.IsFollowing)

	p, err = s.user.Profile(s.ctx, "rajan", "")
	s.Require().NoError(err)
	s.EqualValues(2, p.FollowingCount)
	s.False(p.IsFollowing)

	_, err = s.user.Profile(s.ctx, "ghost", "")
	s.requireKind(err, apperr.KindNotFound)
}

func (s *ServiceSuite) TestFollowingAndFollowersLists() {
	rajan, neha, milanb := s.seed("rajan"), s.seed("neha"), s.seed("milanb")
	for _, u := range []string{"neha", "milanb"} {
		_, err := s.rel.Follow(s.ctx, rajan.ID, u)
		s.Require().NoError(err)
	}
	_, err := s.rel.Follow(s.ctx, milanb.ID, "neha")
	s.Require().NoError(err)

	following, err := s.user.Following(s.ctx, "rajan", 1, 10)
	s.Require().NoError(err)
	s.EqualValues(2, following.Meta.Total)
	s.Len(following.Users, 2)

	followers, err := s.user.Followers(s.ctx, "neha", 1, 1)
	s.Require().NoError(err)
	s.EqualValues(2, followers.Meta.Total)
	s.Len(followers.Users, 1)

	for _, u := range following.Users {
		s.Contains([]string{neha.ID, milanb.ID}, u.ID)
	}
}

func (s *ServiceSuite) TestUpdateProfile() {
	neha := s.seed("neha")
	lat := 27.7

	u, err := s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{
		Name:     strPtr("  Neha S "),
		Bio:      strPtr("traveller"),
		City:     strPtr("Kathmandu"),
		Latitude: &lat,
	}, &Upload{})
	s.requireKind(err, apperr.KindInvalidInput)
	s.Nil(u)

	avatar := upload("me.png", "image/png", "png")
	u, err = s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{
		Name:     strPtr("  Neha S "),
		Bio:      strPtr("traveller"),
		City:     strPtr("Kathmandu"),
		Latitude: &lat,
	}, &avatar)
	s.Require().NoError(err)
	s.Equal("Neha S", u.Name)
	s.True(strings.HasPrefix(u.Avatar, "/uploads/"))

	stored, err := s.users.GetByID(s.ctx, neha.ID)
	s.Require().NoError(err)
	s.Equal("traveller", stored.Bio)
	s.Equal("Kathmandu", stored.Location.City)
	s.Require().NotNil(stored.Location.Latitude)
	s.InDelta(27.7, *stored.Location.Latitude, 1e-9)
	s.Equal(u.Avatar, stored.Avatar)

	_, err = s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{Bio: strPtr(strings.Repeat("b", 321))}, nil)
	s.requireKind(err, apperr.KindInvalidInput)

	big := upload("big.png", "image/png", strings.Repeat("x", 2048))
	_, err = s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{}, &big)
	s.requireKind(err, apperr.KindInvalidInput)
}

func (s *ServiceSuite) TestReplacingAvatarRemovesPreviousObject() {
	neha := s.seed("neha")

	first := upload("a.png", "image/png", "one")
	u, err := s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{}, &first)
	s.Require().NoError(err)
	firstKey := u.AvatarKey
	s.Require().NotEmpty(firstKey)
	s.Equal(1, s.store.count())

	second := upload("b.png", "image/png", "two")
	u, err = s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{}, &second)
	s.Require().NoError(err)
	s.NotEqual(firstKey, u.AvatarKey)
	s.Equal(1, s.store.count())
	s.True(s.store.has(u.AvatarKey))
	s.False(s.store.has(firstKey))

	stored, err := s.users.GetByID(s.ctx, neha.ID)
	s.Require().NoError(err)
	s.Equal(u.AvatarKey, stored.AvatarKey)

	// 只改资料不动头像
	_, err = s.user.UpdateProfile(s.ctx, neha.ID, UpdateProfileInput{Bio: strPtr("hi")}, nil)
	s.Require().NoError(err)
	s.True(s.store.has(u.AvatarKey))
}

func (s *ServiceSuite) TestSearchUsers() {
	s.seed("rajan")
	s.seed("rajesh")
	s.seed("neha")
	s.seed("ra_j")

	page, err := s.user.Search(s.ctx, "RAJ", 1, 10)
	s.Require().NoError(err)
	s.EqualValues(2, page.Meta.Total)

	page, err = s.user.Search(s.ctx, "_", 1, 500)
	s.Require().NoError(err)
	s.EqualValues(1, page.Meta.Total, "underscore is matched literally")
	s.Equal(100, page.Meta.Limit)
}
