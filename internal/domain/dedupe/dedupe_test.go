package dedupe_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/okian/castaway/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given two orderings of the same roster", t, func() {
		a := []string{"c03", "c01", "c02"}
		b := []string{"c02", "c03", "c01"}

		Convey("Then they share a key and the input is untouched", func() {
			So(dedupe.Key(a), ShouldEqual, dedupe.Key(b))
			So(dedupe.Key(a), ShouldEqual, "c01,c02,c03")
			So(a[0], ShouldEqual, "c03")
		})
	})
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When recording a new key", func() {
			seen := d.SeenAndRecord("c01,c02")

			Convey("Then it was not seen before", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports it as seen", func() {
				So(d.SeenAndRecord("c01,c02"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording lets it be recorded again", func() {
				d.Unrecord("c01,c02")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord("c01,c02"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown key", func() {
			d.Unrecord("missing")
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When many keys are recorded", func() {
			for i := 0; i < 5000; i++ {
				d.SeenAndRecord(fmt.Sprintf("k%d", i))
			}
			So(d.Size(), ShouldEqual, 5000)
		})
	})

	Convey("Given a deduper bounded to 3 keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, k := range []string{"a", "b", "c", "d"} {
			d.SeenAndRecord(k)
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord("d"), ShouldBeTrue)
			So(d.SeenAndRecord("a"), ShouldBeFalse)
		})

		Convey("Then unrecording frees a slot without eviction", func() {
			d.Unrecord("c")
			So(d.SeenAndRecord("e"), ShouldBeFalse)
			So(d.SeenAndRecord("b"), ShouldBeTrue)
		})
	})

	Convey("Given concurrent writers racing on the same keys", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !d.SeenAndRecord(fmt.Sprintf("k%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is fresh exactly once", func() {
			So(fresh, ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
