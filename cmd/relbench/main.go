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

	"github.com/d60-Lab/socialfeed/config"
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

// relbench 测量事务化关注的延迟，并校验关注表与粉丝表两侧计数一致
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	rel := service.NewRelationshipService(db, users, follows, fans, nil, nil)
	ctx := context.Background()

	N := envInt("N", 10000)
	CONC := envInt("CONC", 8)
	REPEAT := envInt("REPEAT", 2)

	celeb := model.User{ID: uuid.NewString(), Username: "celeb_" + uuid.NewString()[:8], Email: uuid.NewString()[:8] + "@bench.local", Password: "p"}
	must(0, db.Create(&celeb).Error)
	fansList := make([]model.User, N)
	for i := range fansList {
		id := uuid.NewString()
		fansList[i] = model.User{ID: id, Username: "u" + id[:8], Email: id[:8] + "@bench.local", Password: "p"}
	}
	must(0, db.CreateInBatches(&fansList, 1000).Error)

	// 每个粉丝关注 REPEAT 次，后续调用应为空操作
	jobs := make(chan int, N*REPEAT)
	for r := 0; r < REPEAT; r++ {
		for i := 0; i < N; i++ {
			jobs <- i
		}
	}
	close(jobs)

	var mu sync.Mutex
	lat := make([]time.Duration, 0, N*REPEAT)
	errs := 0
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				st := time.Now()
				_, err := rel.Follow(ctx, fansList[i].ID, celeb.Username)
				d := time.Since(st)
				mu.Lock()
				lat = append(lat, d)
				if err != nil {
					errs++
				}
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
	followers := must(fans.CountFans(ctx, celeb.ID))
	var followingRows int64
	must(0, db.Model(&model.Follow{}).Where("followee_id = ?", celeb.ID).Count(&followingRows).Error)

	fmt.Printf("N=%d CONC=%d REPEAT=%d errors=%d elapsed=%v qps=%.0f\n",
		N, CONC, REPEAT, errs, elapsed, float64(len(lat))/elapsed.Seconds())
	fmt.Printf("Follow latency: avg=%v p50=%v p95=%v p99=%v\n",
		sum/time.Duration(len(lat)), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	fmt.Printf("Edge symmetry: follows=%d fans=%d consistent=%v\n", followingRows, followers, followingRows == followers)
}
