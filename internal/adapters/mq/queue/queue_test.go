package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/h2hmarketing/site/internal/domain/model"
)

func job(name string) Job {
	return NewJob(model.ContactSubmission{Name: name, Email: name + "@example.com", Message: "hello there"})
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		So(q.Len(), ShouldEqual, 0)
		So(q.Cap(), ShouldEqual, 2)

		Convey("When filling it past capacity", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeNil)
			So(q.Enqueue(ctx, job("b")), ShouldBeNil)
			err := q.Enqueue(ctx, job("c"))

			Convey("Then the third job is rejected without blocking", func() {
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("Then jobs come out in order", func() {
				So((<-q.Jobs()).Contact.Name, ShouldEqual, "a")
				So((<-q.Jobs()).Contact.Name, ShouldEqual, "b")
				So(q.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(q.Enqueue(cctx, job("a")), context.Canceled), ShouldBeTrue)
			So(q.Len(), ShouldEqual, 0)
		})

		Convey("When closing with a job still queued", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeNil)
			So(q.IsClosed(), ShouldBeFalse)
			So(q.Close(), ShouldBeNil)

			Convey("Then new jobs are refused and the queued job drains", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, job("b")), ErrClosed), ShouldBeTrue)

				var names []string
				for j := range q.Jobs() {
					names = append(names, j.Contact.Name)
				}
				So(names, ShouldResemble, []string{"a"})
				So(q.Close(), ShouldBeNil)
			})
		})
	})

	Convey("Given concurrent producers and consumers", t, func() {
		q := NewInMemoryQueue(WithCapacity(16))
		const producers, perProducer = 8, 50

		var consumed sync.WaitGroup
		seen := make(chan string, producers*perProducer)
		for range 4 {
			consumed.Add(1)
			go func() {
				defer consumed.Done()
				for j := range q.Jobs() {
					seen <- j.Contact.Name
				}
			}()
		}

		var produced sync.WaitGroup
		for p := range producers {
			produced.Add(1)
			go func() {
				defer produced.Done()
				for i := range perProducer {
					for q.Enqueue(ctx, job(fmt.Sprintf("p%d-%d", p, i))) != nil {
						runtime.Gosched()
					}
				}
			}()
		}
		produced.Wait()
		So(q.Close(), ShouldBeNil)
		consumed.Wait()
		close(seen)

		Convey("Then every job is consumed exactly once", func() {
			uniq := map[string]bool{}
			for n := range seen {
				uniq[n] = true
			}
			So(len(uniq), ShouldEqual, producers*perProducer)
		})
	})
}
