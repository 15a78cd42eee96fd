// Package sse streams song library changes to clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Song change kinds accepted by PublishSongEvent.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// LibraryEvent is the coalesced "something in the library changed" event.
const LibraryEvent = "library.updated"

// Change is the payload of a song.<kind> event. Checksum is the stored
// document's checksum and is empty for deletions.
type Change struct {
	Kind     string    `json:"kind"`
	SongID   string    `json:"songId"`
	Checksum string    `json:"checksum,omitempty"`
	At       time.Time `json:"at"`
}

type libraryChange struct {
	Changes int       `json:"changes"`
	At      time.Time `json:"at"`
}

// Subscription is one client's stream of encoded frames. A subscription with
// a Song only receives that song's changes; an empty Song follows the whole
// library, including library.updated.
type Subscription struct {
	Song string
	C    <-chan []byte

	ch chan []byte
}

// Broker fans song changes out to subscriptions.
//
// A single loop goroutine owns the subscription set, the frame sequence and
// the library throttle; public methods talk to it over channels.
type Broker struct {
	libraryMin time.Duration

	subscribeCh   chan *Subscription
	unsubscribeCh chan *Subscription
	changeCh      chan Change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. library.updated goes out at most once per
// libraryThrottle; changes inside the window are folded into one trailing
// event.
func NewBroker(libraryThrottle time.Duration) *Broker {
	if libraryThrottle <= 0 {
		libraryThrottle = 2 * time.Second
	}

	b := &Broker{
		libraryMin:    libraryThrottle,
		subscribeCh:   make(chan *Subscription),
		unsubscribeCh: make(chan *Subscription),
		changeCh:      make(chan Change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[*Subscription]struct{})
	var seq uint64
	var lastLibrary time.Time
	var trailing <-chan time.Time
	pending := 0

	// send encodes one frame and queues it on each subscription wants accepts.
	send := func(name string, data any, wants func(*Subscription) bool) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		seq++
		frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, name, payload))
		for sub := range subs {
			if !wants(sub) {
				continue
			}
			select {
			case sub.ch <- frame:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	flushLibrary := func(now time.Time) {
		lastLibrary = now
		send(LibraryEvent, libraryChange{Changes: pending, At: now.UTC()}, func(sub *Subscription) bool {
			return sub.Song == ""
		})
		pending = 0
	}

	for {
		select {
		case <-b.stopCh:
			for sub := range subs {
				close(sub.ch)
			}
			return

		case sub := <-b.subscribeCh:
			subs[sub] = struct{}{}

		case sub := <-b.unsubscribeCh:
			if _, ok := subs[sub]; ok {
				delete(subs, sub)
				close(sub.ch)
			}

		case c := <-b.changeCh:
			send("song."+c.Kind, c, func(sub *Subscription) bool {
				return sub.Song == "" || sub.Song == c.SongID
			})

			pending++
			if trailing != nil {
				continue
			}
			if wait := b.libraryMin - c.At.Sub(lastLibrary); wait > 0 {
				trailing = time.After(wait)
				continue
			}
			flushLibrary(c.At)

		case now := <-trailing:
			trailing = nil
			flushLibrary(now)

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

// Close stops the loop and closes every subscription channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client for one song, or the whole library when song
// is empty. On a closed broker the returned channel is already closed.
func (b *Broker) Subscribe(song string) *Subscription {
	ch := make(chan []byte, 64)
	sub := &Subscription{Song: song, C: ch, ch: ch}
	if b.closed.Load() {
		close(ch)
		return sub
	}

	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(ch)
	}
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- sub:
	case <-b.stopped:
	}
}

// ClientCount returns the number of live subscriptions.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishSongEvent publishes song.<kind> for id with the document checksum
// sum. Unknown kinds are dropped.
func (b *Broker) PublishSongEvent(kind, id, sum string) {
	switch kind {
	case KindCreated, KindUpdated, KindDeleted:
	default:
		return
	}
	if b.closed.Load() {
		return
	}
	c := Change{Kind: kind, SongID: id, Checksum: sum, At: time.Now().UTC()}
	select {
	case b.changeCh <- c:
	case <-b.stopped:
	}
}

// ServeHTTP streams events (GET /api/events). ?song=<id> limits the stream
// to one song.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := b.Subscribe(r.URL.Query().Get("song"))
	defer b.Unsubscribe(sub)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-sub.C:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
