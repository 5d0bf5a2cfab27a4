package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
)

func (s *ServiceSuite) TestFeedFollowedAuthorsOnly() {
	rajan, neha, milanb := s.seed("rajan"), s.seed("neha"), s.seed("milanb")
	_, err := s.rel.Follow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)

	t1 := s.publish(milanb, "t1")
	t2 := s.publish(neha, "t2")
	t3 := s.publish(rajan, "t3")

	page, err := s.feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.Equal([]string{t3.ID, t2.ID}, postIDsOf(page.Posts))
	s.EqualValues(2, page.Meta.Total)
	s.Equal(1, page.Meta.Page)
	s.Equal(10, page.Meta.Limit)
	s.NotContains(postIDsOf(page.Posts), t1.ID)
}

func (s *ServiceSuite) TestFeedWithoutFollowingIsOwnPublicPosts() {
	rajan, neha := s.seed("rajan"), s.seed("neha")
	s.publish(neha, "not followed")

	page, err := s.feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.NotNil(page.Posts)
	s.Empty(page.Posts)
	s.EqualValues(0, page.Meta.Total)

	mine := s.publish(rajan, "mine")
	_, err = s.post.Create(s.ctx, rajan.ID, CreatePostInput{Text: "hidden", Visibility: model.VisibilityFollowers}, nil)
	s.Require().NoError(err)

	page, err = s.feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.Equal([]string{mine.ID}, postIDsOf(page.Posts))
}

func (s *ServiceSuite) TestFeedPagingPolicy() {
	rajan := s.seed("rajan")
	var all []string
	for i := 0; i < 3; i++ {
		all = append([]string{s.publish(rajan, "p").ID}, all...)
	}

	page, err := s.feed.Feed(s.ctx, rajan.ID, 0, 1000)
	s.Require().NoError(err)
	s.Equal(1, page.Meta.Page)
	s.Equal(50, page.Meta.Limit)
	s.Equal(all, postIDsOf(page.Posts))

	page, err = s.feed.Feed(s.ctx, rajan.ID, -3, 0)
	s.Require().NoError(err)
	s.Equal(1, page.Meta.Page)
	s.Equal(20, page.Meta.Limit)

	page, err = s.feed.Feed(s.ctx, rajan.ID, 2, 2)
	s.Require().NoError(err)
	s.Equal(all[2:], postIDsOf(page.Posts))
	s.EqualValues(3, page.Meta.Total)
}

func (s *ServiceSuite) TestExploreTagIsExact() {
	neha := s.seed("neha")
	travel := s.publish(neha, "mountains", "travel")
	s.publish(neha, "beach", "travelgram")
	_, err := s.post.Create(s.ctx, neha.ID, CreatePostInput{Text: "private", Tags: "travel", Visibility: model.VisibilityPrivate}, nil)
	s.Require().NoError(err)

	page, err := s.feed.Explore(s.ctx, "beach", "#Travel", 1, 20)
	s.Require().NoError(err)
	s.Equal([]string{travel.ID}, postIDsOf(page.Posts))
	s.EqualValues(1, page.Meta.Total)
}

func (s *ServiceSuite) TestExploreLongTagMatchesStoredTag() {
	neha := s.seed("neha")
	long := strings.Repeat("á", maxTagLength+10)
	p := s.publish(neha, "long tag", long)
	s.Require().Equal([]string{strings.Repeat("á", maxTagLength)}, p.Tags)

	page, err := s.feed.Explore(s.ctx, "", "#"+strings.ToUpper(long), 1, 20)
	s.Require().NoError(err)
	s.Equal([]string{p.ID}, postIDsOf(page.Posts))
}

func (s *ServiceSuite) TestExploreQueryFoldsAccents() {
	neha := s.seed("neha")
	p := s.publish(neha, "Été à Paris")
	s.publish(neha, "ete without accents")

	for _, q := range []string{"été", "ÉTÉ", "à paris"} {
		page, err := s.feed.Explore(s.ctx, q, "", 1, 20)
		s.Require().NoError(err)
		s.Equal([]string{p.ID}, postIDsOf(page.Posts), q)
	}
}

func (s *ServiceSuite) TestExploreQueryAndUnfiltered() {
	neha := s.seed("neha")
	a := s.publish(neha, "Sunset at the BEACH")
	b := s.publish(neha, "lunch", "beachlife")
	c := s.publish(neha, "nothing")

	page, err := s.feed.Explore(s.ctx, "beach", "", 1, 20)
	s.Require().NoError(err)
	s.Equal([]string{b.ID, a.ID}, postIDsOf(page.Posts))

	page, err = s.feed.Explore(s.ctx, "", "", 1, 20)
	s.Require().NoError(err)
	s.Equal([]string{c.ID, b.ID, a.ID}, postIDsOf(page.Posts))
}

func (s *ServiceSuite) TestFeedThroughRedisFollowingIndex() {
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	index := cache.NewFollowingIndex(client, s.follows, time.Minute)
	rel := NewRelationshipService(s.db, s.users, s.follows, s.fans, index, nil)
	feed := NewFeedService(repository.NewPostRepository(s.db), index, testPaging)

	rajan, neha := s.seed("rajan"), s.seed("neha")
	np := s.publish(neha, "hello")

	page, err := feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.Empty(page.Posts)

	// 关注后缓存被清理，下一次 feed 立即可见
	_, err = rel.Follow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	page, err = feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.Equal([]string{np.ID}, postIDsOf(page.Posts))

	_, err = rel.Unfollow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	page, err = feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.Empty(page.Posts)
}

// pausingLoader 在读完关注表后暂停一次，直到 resume 被关闭
type pausingLoader struct {
	FolloweeSource
	paused chan struct{}
	resume chan struct{}
	once   sync.Once
}

func (p *pausingLoader) FolloweeIDs(ctx context.Context, id string) ([]string, error) {
	ids, err := p.FolloweeSource.FolloweeIDs(ctx, id)
	p.once.Do(func() {
		close(p.paused)
		<-p.resume
	})
	return ids, err
}

func (s *ServiceSuite) TestFeedReadRacingFollowIsNotCached() {
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	loader := &pausingLoader{FolloweeSource: s.follows, paused: make(chan struct{}), resume: make(chan struct{})}
	index := cache.NewFollowingIndex(client, loader, 10*time.Minute)
	rel := NewRelationshipService(s.db, s.users, s.follows, s.fans, index, nil)
	feed := NewFeedService(repository.NewPostRepository(s.db), index, testPaging)

	rajan, neha := s.seed("rajan"), s.seed("neha")
	np := s.publish(neha, "hello")

	done := make(chan error, 1)
	go func() {
		_, err := feed.Feed(s.ctx, rajan.ID, 1, 10)
		done <- err
	}()
	<-loader.paused
	_, err := rel.Follow(s.ctx, rajan.ID, "neha")
	s.Require().NoError(err)
	close(loader.resume)
	s.Require().NoError(<-done)

	page, err := feed.Feed(s.ctx, rajan.ID, 1, 10)
	s.Require().NoError(err)
	s.Equal([]string{np.ID}, postIDsOf(page.Posts))
}
