package gymdesk

import "sync"

// Subscription delivers session snapshots. Delivery conflates: when the reader falls
// behind, older undelivered snapshots are replaced so the latest one always arrives.
type Subscription struct {
	ch     chan Session
	id     uint64
	engine *Engine
	once   sync.Once
}

// C returns the delivery channel. It is closed by Close or when the engine closes.
func (s *Subscription) C() <-chan Session {
	return s.ch
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.engine.unsubscribe(s)
}

// Subscribe registers a subscriber with the given channel buffer (minimum 1). The current
// snapshot is delivered immediately.
func (e *Engine) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{
		ch:     make(chan Session, buffer),
		engine: e,
	}

	e.subMu.Lock()
	defer e.subMu.Unlock()

	select {
	case <-e.done:
		sub.once.Do(func() { close(sub.ch) })
		return sub
	default:
	}

	e.nextSub++
	sub.id = e.nextSub
	e.subs[sub.id] = sub
	offer(sub.ch, e.Session())
	return sub
}

func (e *Engine) unsubscribe(sub *Subscription) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	delete(e.subs, sub.id)
	sub.once.Do(func() { close(sub.ch) })
}

func (e *Engine) notify(snap Session) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for _, sub := range e.subs {
		offer(sub.ch, snap)
	}
}

func (e *Engine) closeSubscriptions() {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for id, sub := range e.subs {
		delete(e.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// offer never blocks. Callers hold subMu, so no other sender races the drain.
func offer(ch chan Session, snap Session) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
