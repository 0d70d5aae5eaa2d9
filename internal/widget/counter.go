package widget

import (
	"sync"
	"time"

	"github.com/h2hmarketing/site/internal/domain/counter"
	"github.com/h2hmarketing/site/internal/domain/scroll"
	"github.com/h2hmarketing/site/internal/frame"
)

// StatCounter counts up once its section has been revealed.
type StatCounter struct {
	page   *Page
	id     string
	top    float64
	height float64
	run    *counter.Run

	mu   sync.RWMutex
	text string
	done bool

	lifecycle
}

// NewStatCounter creates a counter for a block at document offset top.
func NewStatCounter(page *Page, id string, a counter.Animator, top, height float64) *StatCounter {
	if a.Duration == 0 {
		a.Duration = counter.DefaultDuration
	}
	c := &StatCounter{page: page, id: id, top: top, height: height, run: counter.NewRun(a)}
	_, c.text, _ = c.run.Sample(time.Time{})
	return c
}

// Mount observes the section; the first reveal begins the count.
func (c *StatCounter) Mount(s frame.Scheduler) error {
	td, err := c.begin()
	if err != nil {
		return err
	}
	var sampling frame.Handle
	h := c.page.Scroll.Observe(c.id, scroll.TriggerOnce, scroll.DefaultThreshold, c.page.Element(c.top, c.height), func(st scroll.State) {
		if !st.Visible || !c.run.Begin(s.Now()) {
			return
		}
		sampling = td.Track(s, s.Subscribe(func(f frame.Frame) {
			_, text, done := c.run.Sample(f.Now)
			c.mu.Lock()
			c.text, c.done = text, done
			c.mu.Unlock()
			if done {
				s.Cancel(sampling)
			}
		}))
	})
	td.Add(func() { c.page.Scroll.Unobserve(h) })
	return nil
}

// Unmount stops the count where it is.
func (c *StatCounter) Unmount() { c.end() }

// Text returns the displayed value.
func (c *StatCounter) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

// Done reports whether the count reached its target.
func (c *StatCounter) Done() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.done
}
