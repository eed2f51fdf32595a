// Package progress renders a simple "done/total" counter.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// Counter prints its state on a single, rewritten terminal line.
type Counter struct {
	mu    sync.Mutex
	w     io.Writer
	total int
	done  int
}

// NewCounter creates a counter writing to w.
func NewCounter(w io.Writer) *Counter {
	return &Counter{w: w}
}

// Start resets the counter to zero of total and displays it.
func (c *Counter) Start(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	c.done = 0
	c.display()
}

// Advance counts one finished unit.
func (c *Counter) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	c.display()
}

// Finish ends the counter line.
func (c *Counter) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w)
}

// Done returns the number of finished units.
func (c *Counter) Done() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Counter) display() {
	fmt.Fprintf(c.w, "\r%d/%d", c.done, c.total)
}
