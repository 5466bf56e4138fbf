package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/castaway/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(key string, score float64) repository.Entry {
	return repository.Entry{Key: key, Score: score, Strategy: "value", Members: []string{key}}
}

func TestBoard(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty board", t, func() {
		b := repository.NewBoard()

		Convey("Then reads report nothing", func() {
			So(b.Count(ctx), ShouldEqual, 0)
			top, err := b.TopN(ctx, 5)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
			_, err = b.Rank(ctx, "missing")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("Then invalid input is rejected", func() {
			_, err := b.TopN(ctx, 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
			_, err = b.UpdateBest(ctx, repository.Entry{Score: 1})
			So(err, ShouldEqual, repository.ErrEmptyKey)
		})
	})

	Convey("Given a board with scored rosters", t, func() {
		b := repository.NewBoard()
		for _, e := range []repository.Entry{entry("a", 10), entry("b", 30), entry("c", 20), entry("d", 30)} {
			ok, err := b.UpdateBest(ctx, e)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		}

		Convey("Then TopN orders by score with key as tie-break and dense ranks", func() {
			top, err := b.TopN(ctx, 10)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 4)
			keys := []string{top[0].Key, top[1].Key, top[2].Key, top[3].Key}
			So(keys, ShouldResemble, []string{"b", "d", "c", "a"})
			So([]int{top[0].Rank, top[1].Rank, top[2].Rank, top[3].Rank}, ShouldResemble, []int{1, 1, 2, 3})
		})

		Convey("Then Rank agrees with TopN", func() {
			e, err := b.Rank(ctx, "d")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 1)
			e, err = b.Rank(ctx, "a")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 3)
			So(e.Members, ShouldResemble, []string{"a"})
		})

		Convey("When a key scores worse than its best", func() {
			ok, err := b.UpdateBest(ctx, entry("b", 5))

			Convey("Then the board keeps the best", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				e, _ := b.Rank(ctx, "b")
				So(e.Score, ShouldEqual, 30)
			})
		})

		Convey("When a key improves", func() {
			ok, err := b.UpdateBest(ctx, entry("a", 50))

			Convey("Then it moves to the top without duplicating", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(b.Count(ctx), ShouldEqual, 4)
				top, _ := b.TopN(ctx, 1)
				So(top[0].Key, ShouldEqual, "a")
			})
		})
	})

	Convey("Given a board with capacity", t, func() {
		b := repository.NewBoard(repository.WithCapacity(2))
		for i, s := range []float64{5, 1, 9, 3} {
			_, err := b.UpdateBest(ctx, entry(fmt.Sprintf("k%d", i), s))
			So(err, ShouldBeNil)
		}

		Convey("Then only the best entries survive", func() {
			So(b.Count(ctx), ShouldEqual, 2)
			top, _ := b.TopN(ctx, 5)
			So(top[0].Key, ShouldEqual, "k2")
			So(top[1].Key, ShouldEqual, "k0")
			_, err := b.Rank(ctx, "k1")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("Then a weaker newcomer is refused", func() {
			ok, err := b.UpdateBest(ctx, entry("weak", 0.5))
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given concurrent writers", t, func() {
		b := repository.NewBoard()
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_, _ = b.UpdateBest(ctx, entry(fmt.Sprintf("k%d", i), float64(w*i)))
				}
			}(w)
		}
		wg.Wait()

		Convey("Then each key holds its best score", func() {
			So(b.Count(ctx), ShouldEqual, 50)
			e, err := b.Rank(ctx, "k49")
			So(err, ShouldBeNil)
			So(e.Score, ShouldEqual, 7*49)
			So(e.Rank, ShouldEqual, 1)
		})
	})
}

func BenchmarkUpdateBest(b *testing.B) {
	ctx := context.Background()
	board := repository.NewBoard(repository.WithCapacity(100))
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("roster-%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = board.UpdateBest(ctx, entry(keys[i%len(keys)], float64(i%977)))
	}
}
