package chat

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/h2hmarketing/site/internal/frame"
)

type turn struct {
	Role   Role
	Intent Intent
}

func turns(msgs []Message) []turn {
	out := make([]turn, len(msgs))
	for i, m := range msgs {
		out[i] = turn{Role: m.Role, Intent: m.Intent}
	}
	return out
}

func newTestSession(opts ...SessionOption) (*Session, *frame.Loop, *frame.ManualClock) {
	clock := frame.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	loop := frame.NewLoop(frame.WithClock(clock))
	return NewSession(NewResponder("H2H Marketing"), loop, opts...), loop, clock
}

func TestSessionConversation(t *testing.T) {
	Convey("Given an opened chat session", t, func() {
		var replies []Reply
		s, loop, clock := newTestSession(WithReplyHook(func(r Reply) { replies = append(replies, r) }))
		s.Open()
		s.Open()

		Convey("The welcome arrives after half a second", func() {
			loop.Advance(clock, 400*time.Millisecond)
			So(s.Messages(), ShouldBeEmpty)
			loop.Advance(clock, 200*time.Millisecond)
			msgs := s.Messages()
			So(len(msgs), ShouldEqual, 1)
			So(msgs[0].Intent, ShouldEqual, IntentWelcome)
			So(msgs[0].Content, ShouldContainSubstring, "Welcome to H2H Marketing")
		})

		Convey("When the visitor says hi, asks the cost and says thanks", func() {
			loop.Advance(clock, time.Second)
			for _, msg := range []string{"hi", "how much does it cost", "thanks"} {
				_, err := s.Submit(msg)
				So(err, ShouldBeNil)
				So(s.Typing(), ShouldBeTrue)
				loop.Advance(clock, DefaultTypingMax+DefaultTypingMin)
				So(s.Typing(), ShouldBeFalse)
			}

			Convey("Then each reply follows its question in order", func() {
				msgs := s.Messages()
				want := []turn{
					{RoleAssistant, IntentWelcome},
					{RoleUser, ""}, {RoleAssistant, IntentGreeting},
					{RoleUser, ""}, {RoleAssistant, IntentPricing},
					{RoleUser, ""}, {RoleAssistant, IntentThanks},
				}
				So(cmp.Diff(want, turns(msgs)), ShouldBeEmpty)
				So(msgs[2].Content, ShouldContainSubstring, "H2H Marketing")
				So(msgs[4].Content, ShouldContainSubstring, "$50,000+")
				So(len(replies), ShouldEqual, 4)

				ids := map[string]bool{}
				for _, m := range msgs {
					ids[m.ID] = true
				}
				So(len(ids), ShouldEqual, len(msgs))
			})
		})
	})
}

func TestSessionGuards(t *testing.T) {
	Convey("Given a session with a fixed delay", t, func() {
		s, loop, clock := newTestSession(WithDelay(func() time.Duration { return 1500 * time.Millisecond }))

		Convey("Empty input is rejected", func() {
			_, err := s.Submit("   ")
			So(errors.Is(err, ErrEmptyMessage), ShouldBeTrue)
		})

		Convey("A second submit while typing is rejected", func() {
			first, err := s.Submit("  hello  ")
			So(err, ShouldBeNil)
			So(first.Content, ShouldEqual, "hello")
			_, err = s.Submit("hello again")
			So(errors.Is(err, ErrBusy), ShouldBeTrue)

			loop.Advance(clock, 1499*time.Millisecond)
			So(s.Typing(), ShouldBeTrue)
			loop.Advance(clock, time.Millisecond)
			So(s.Typing(), ShouldBeFalse)

			want := []Message{
				{Role: RoleUser, Content: "hello"},
				{Role: RoleAssistant, Intent: IntentGreeting},
			}
			So(cmp.Diff(want, s.Messages(), cmpopts.IgnoreFields(Message{}, "ID", "Timestamp", "Content")), ShouldBeEmpty)
		})

		Convey("No welcome is sent when the transcript already has messages", func() {
			s.Submit("hi")
			s.Open()
			loop.Advance(clock, 2*time.Second)
			So(len(s.Messages()), ShouldEqual, 2)
		})

		Convey("Closing cancels pending work", func() {
			s.Open()
			s.Submit("hi")
			s.Close()
			s.Close()
			So(loop.Stats().Pending, ShouldEqual, 0)
			loop.Advance(clock, 3*time.Second)
			So(len(s.Messages()), ShouldEqual, 1)

			_, err := s.Submit("again")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})

		Convey("Activity time follows messages", func() {
			before := s.LastActive()
			clock.Add(time.Minute)
			s.Submit("hi")
			So(s.LastActive().After(before), ShouldBeTrue)
			So(s.ID(), ShouldNotBeEmpty)
		})
	})
}

func TestSessionConcurrentSubmits(t *testing.T) {
	Convey("Given a session whose loop runs on its own goroutine", t, func() {
		loop := frame.NewLoop(frame.WithInterval(time.Millisecond))
		s := NewSession(NewResponder("H2H Marketing"), loop, WithDelay(func() time.Duration { return 0 }))
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = loop.Run(ctx)
		}()
		defer func() {
			cancel()
			<-done
		}()

		Convey("When the visitor submits again the moment typing clears", func() {
			const rounds = 50
			sent := 0
			deadline := time.Now().Add(5 * time.Second)
			for sent < rounds && time.Now().Before(deadline) {
				if _, err := s.Submit("thanks"); err != nil {
					runtime.Gosched()
					continue
				}
				sent++
			}
			for s.Typing() && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}

			Convey("Then every reply directly follows its question", func() {
				So(sent, ShouldEqual, rounds)
				msgs := s.Messages()
				So(len(msgs), ShouldEqual, 2*rounds)
				for i, m := range msgs {
					want := RoleUser
					if i%2 == 1 {
						want = RoleAssistant
					}
					So(m.Role, ShouldEqual, want)
				}
			})

			Convey("Then no delivered reply stays tracked", func() {
				s.mu.Lock()
				pending := s.reply
				s.mu.Unlock()
				So(pending, ShouldEqual, frame.Handle(0))
				So(loop.Stats().Pending, ShouldEqual, 0)
			})
		})
	})
}

func TestUniformDelay(t *testing.T) {
	Convey("Uniform delays stay in range", t, func() {
		d := UniformDelay(DefaultTypingMax, DefaultTypingMin)
		for i := 0; i < 200; i++ {
			v := d()
			So(v, ShouldBeBetweenOrEqual, DefaultTypingMin, DefaultTypingMax)
		}
		So(UniformDelay(time.Second, time.Second)(), ShouldEqual, time.Second)
	})
}
