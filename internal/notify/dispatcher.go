package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/pkg/logger"
)

type job struct {
	userID string
	ev     Event
}

// Dispatcher 异步投递通知：有界队列 + 若干 worker，队列满时丢弃。
// 调用方从不等待投递结果。
type Dispatcher struct {
	bus     Bus
	ch      chan job
	timeout time.Duration
	now     func() time.Time
}

func NewDispatcher(bus Bus, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Dispatcher{bus: bus, ch: make(chan job, queueSize), timeout: 5 * time.Second, now: time.Now}
}

// Start 启动 workers 个投递协程，返回停止函数；停止时尽量排空队列
func (d *Dispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case j := <-d.ch:
					d.send(j)
				case <-stopCh:
					for {
						select {
						case j := <-d.ch:
							d.send(j)
						default:
							return
						}
					}
				}
			}
		}()
	}
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stopCh) })
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) send(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.bus.Publish(ctx, j.userID, j.ev); err != nil {
		logger.Warn("notification publish failed", zap.String("user", j.userID), zap.Error(err))
	}
}

// Notify 入队一条通知，队列满时丢弃并告警
func (d *Dispatcher) Notify(userID string, n Notification) {
	if n.At.IsZero() {
		n.At = d.now().UTC()
	}
	select {
	case d.ch <- job{userID: userID, ev: Event{Name: EventNotification, Payload: n}}:
	default:
		logger.Warn("notification queue full, drop", zap.String("user", userID), zap.String("type", n.Type))
	}
}

// QueueLen 返回当前队列长度（采样值）
func (d *Dispatcher) QueueLen() int { return len(d.ch) }
