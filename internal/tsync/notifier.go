package tsync

import (
	"sync"
)

// Notifier fan-outs wake-up signals to any number of subscribers. Each
// subscriber gets a buffered channel that receives a single empty struct
// whenever Notify is called.
type Notifier struct {
	mutex   sync.Mutex
	closed  bool
	nextID  int
	clients map[int]chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		clients: make(map[int]chan struct{}),
	}
}

// Subscribe registers a new listener and returns both its ID and a channel
// that delivers signals. If the notifier has already been closed a closed
// channel is returned so callers can fail fast.
func (n *Notifier) Subscribe() (int, <-chan struct{}) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.closed {
		ch := make(chan struct{})
		close(ch)
		return -1, ch
	}

	id := n.nextID
	n.nextID++

	ch := make(chan struct{}, 1)
	n.clients[id] = ch

	return id, ch
}

// Unsubscribe removes an existing listener and closes its channel so the
// caller can tear down any goroutines blocked on it.
func (n *Notifier) Unsubscribe(id int) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if ch, ok := n.clients[id]; ok {
		close(ch)
		delete(n.clients, id)
	}
}

// Notify broadcasts a signal to every active listener without blocking on
// slow readers. A listener with a pending signal is left untouched, it will
// wake up on its next receive anyway.
func (n *Notifier) Notify() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.closed {
		return
	}

	for _, ch := range n.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears down the notifier and closes every subscriber channel,
// signalling to callers that no further events will arrive.
func (n *Notifier) Close() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.closed {
		return
	}

	n.closed = true

	for id, ch := range n.clients {
		close(ch)
		delete(n.clients, id)
	}
}
