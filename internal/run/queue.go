package run

import (
	"sync"

	"github.com/jgrandin/wxpost/internal/wx"
)

// queue is an unbounded FIFO of observations. Producers never block; a
// slow consumer stalls delivery but loses nothing already enqueued.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []wx.Observation
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues an observation and returns immediately.
func (q *queue) push(obs wx.Observation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, obs)
	q.cond.Signal()
}

// pop blocks until an item is available or the queue is closed and
// drained. The second return is false only when nothing more will come.
func (q *queue) pop() (wx.Observation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return wx.Observation{}, false
	}

	obs := q.items[0]
	q.items = q.items[1:]
	return obs, true
}

// close stops accepting new items; pop keeps serving whatever remains.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
