package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/lineups/internal/adapters/mq/worker"
	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var _ interval.Runner = (*worker.Pool)(nil)

func TestPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool of four workers", t, func() {
		p := worker.NewPool(4, worker.WithName("test-pool"))
		So(p.Size(), ShouldEqual, 4)

		Convey("When running twenty tasks", func() {
			var mu sync.Mutex
			seen := map[int]int{}
			err := p.Run(ctx, 20, func(_ context.Context, i int) error {
				mu.Lock()
				seen[i]++
				mu.Unlock()
				return nil
			})

			Convey("Then every index runs exactly once", func() {
				So(err, ShouldBeNil)
				So(len(seen), ShouldEqual, 20)
				for i := 0; i < 20; i++ {
					So(seen[i], ShouldEqual, 1)
				}
			})
		})

		Convey("When tasks overlap in time", func() {
			var cur, peak int32
			err := p.Run(ctx, 8, func(_ context.Context, _ int) error {
				n := atomic.AddInt32(&cur, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&cur, -1)
				return nil
			})

			Convey("Then no more than four run at once", func() {
				So(err, ShouldBeNil)
				So(atomic.LoadInt32(&peak), ShouldBeLessThanOrEqualTo, 4)
				So(atomic.LoadInt32(&peak), ShouldBeGreaterThan, 1)
			})
		})

		Convey("When one task fails", func() {
			boom := errors.New("boom")
			var ran int32
			err := p.Run(ctx, 100, func(ctx context.Context, i int) error {
				atomic.AddInt32(&ran, 1)
				if i == 0 {
					return boom
				}
				select {
				case <-ctx.Done():
				case <-time.After(10 * time.Millisecond):
				}
				return nil
			})

			Convey("Then its error is returned and the rest are skipped", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(atomic.LoadInt32(&ran), ShouldBeLessThan, 100)
			})
		})

		Convey("When a task panics", func() {
			err := p.Run(ctx, 3, func(_ context.Context, i int) error {
				if i == 1 {
					panic("bad interval")
				}
				return nil
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "bad interval")
		})

		Convey("When the parent context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := p.Run(cctx, 5, func(context.Context, int) error { return nil })
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When there is nothing to run", func() {
			So(p.Run(ctx, 0, func(context.Context, int) error { return errors.New("unreachable") }), ShouldBeNil)
		})
	})

	Convey("Given a non-positive size", t, func() {
		So(worker.NewPool(0).Size(), ShouldBeGreaterThan, 0)
	})
}

func TestPoolDrivesSequencer(t *testing.T) {
	Convey("Given a sequencer backed by a pool", t, func() {
		ivs := []interval.Interval{
			{Num: 1, Files: []interval.File{{Path: "a/240101.csv", Token: "240101"}}},
			{Num: 2, Files: []interval.File{{Path: "a/240102.csv", Token: "240102"}}},
			{Num: 3, Files: []interval.File{{Path: "a/240103.csv", Token: "240103"}}},
		}
		seq := interval.NewSequencer(nopLoader{}, summarizeNothing, interval.WithRunner(worker.NewPool(3)))

		res, err := seq.Build(context.Background(), ivs)
		So(err, ShouldBeNil)
		So(len(res), ShouldEqual, 3)
		for i, r := range res {
			So(r.Interval.Num, ShouldEqual, i+1)
		}
	})
}

type nopLoader struct{}

func (nopLoader) Load(context.Context, []interval.File) ([]model.Stint, error) { return nil, nil }

func summarizeNothing([]model.Stint) derive.Table { return derive.Table{} }
