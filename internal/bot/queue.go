package bot

import "sync"

// nickQueue runs jobs one at a time per nick, in submission order. Jobs for
// different nicks run concurrently. A nick's worker goroutine exits as soon
// as its queue is empty.
type nickQueue struct {
	mu      sync.Mutex
	pending map[string][]func()
	wg      sync.WaitGroup
}

func newNickQueue() *nickQueue {
	return &nickQueue{pending: make(map[string][]func())}
}

// Submit queues job behind any unfinished jobs for nick.
func (q *nickQueue) Submit(nick string, job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs, running := q.pending[nick]
	q.pending[nick] = append(jobs, job)
	if running {
		return
	}
	q.wg.Add(1)
	go q.drain(nick)
}

// Wait blocks until every submitted job has finished.
func (q *nickQueue) Wait() {
	q.wg.Wait()
}

func (q *nickQueue) drain(nick string) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		jobs := q.pending[nick]
		if len(jobs) == 0 {
			delete(q.pending, nick)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[nick] = jobs[1:]
		q.mu.Unlock()

		job()
	}
}
