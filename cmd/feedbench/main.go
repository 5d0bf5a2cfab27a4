package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	return xs[k]
}

// run 以固定 QPS 读取 viewers 的第一页 feed
func run(ctx context.Context, name string, feed service.FeedService, viewers []string, reads, conc, qps int) {
	limiter := rate.NewLimiter(rate.Limit(qps), conc)
	jobs := make(chan string, reads)
	for i := 0; i < reads; i++ {
		jobs <- viewers[i%len(viewers)]
	}
	close(jobs)

	var mu sync.Mutex
	lat := make([]time.Duration, 0, reads)
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				st := time.Now()
				if _, err := feed.Feed(ctx, v, 1, 20); err != nil {
					panic(err)
				}
				d := time.Since(st)
				mu.Lock()
				lat = append(lat, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	var sum time.Duration
	for _, d := range lat {
		sum += d
	}
	fmt.Printf("[%s] reads=%d elapsed=%v avg=%v p50=%v p95=%v p99=%v\n",
		name, len(lat), elapsed, sum/time.Duration(len(lat)), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
}

// feedbench 对比直接查关注表与经 Redis 缓存关注列表两种 feed 读路径
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)
	ctx := context.Background()

	AUTHORS := envInt("AUTHORS", 200)
	POSTS := envInt("POSTS", 20)
	VIEWERS := envInt("VIEWERS", 100)
	FOLLOWS := envInt("FOLLOWS", 50)
	READS := envInt("READS", 5000)
	CONC := envInt("CONC", 8)
	QPS := envInt("QPS", 500)

	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	posts := repository.NewPostRepository(db)

	mkUser := func() model.User {
		id := uuid.NewString()
		return model.User{ID: id, Username: "u" + id[:8], Email: id[:8] + "@bench.local", Password: "p"}
	}
	authors := make([]model.User, AUTHORS)
	for i := range authors {
		authors[i] = mkUser()
	}
	viewers := make([]model.User, VIEWERS)
	for i := range viewers {
		viewers[i] = mkUser()
	}
	must(0, db.CreateInBatches(&authors, 1000).Error)
	must(0, db.CreateInBatches(&viewers, 1000).Error)

	base := time.Now().UTC().Add(-time.Duration(AUTHORS*POSTS) * time.Second)
	for i, a := range authors {
		for j := 0; j < POSTS; j++ {
			p := &model.Post{
				ID:         must(uuid.NewV7()).String(),
				AuthorID:   a.ID,
				Text:       fmt.Sprintf("post %d by %s", j, a.Username),
				Visibility: model.VisibilityPublic,
				CreatedAt:  base.Add(time.Duration(i*POSTS+j) * time.Second),
			}
			must(0, posts.Create(ctx, p))
		}
	}
	viewerIDs := make([]string, len(viewers))
	for i, v := range viewers {
		viewerIDs[i] = v.ID
		for k := 0; k < FOLLOWS && k < len(authors); k++ {
			a := authors[(i*7+k)%len(authors)]
			must(follows.Create(ctx, v.ID, a.ID))
			must(fans.Create(ctx, a.ID, v.ID))
		}
	}
	fmt.Printf("AUTHORS=%d POSTS=%d VIEWERS=%d FOLLOWS=%d READS=%d CONC=%d QPS=%d\n",
		AUTHORS, POSTS, VIEWERS, FOLLOWS, READS, CONC, QPS)

	paging := service.Paging{Default: cfg.Feed.DefaultLimit, Max: cfg.Feed.MaxLimit}
	run(ctx, "db", service.NewFeedService(posts, follows, paging), viewerIDs, READS, CONC, QPS)

	if !cfg.Redis.Enabled {
		fmt.Println("redis disabled, skip cached run")
		return
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()
	index := cache.NewFollowingIndex(rdb, follows, cfg.Redis.CacheTTL)
	for _, id := range viewerIDs {
		index.Invalidate(ctx, id)
	}
	run(ctx, "redis", service.NewFeedService(posts, index, paging), viewerIDs, READS, CONC, QPS)
	hits, misses := index.Counters()
	fmt.Printf("following cache: hits=%d misses=%d hit_rate=%.2f%%\n", hits, misses, float64(hits)*100/float64(hits+misses))
}
