package server

import (
	"encoding/json"
	"sync"

	"github.com/quissme/resonance/internal/quissme"
)

const (
	EventQuizActivated   = "quiz_activated"
	EventPartnerAnswered = "partner_answered"
	EventQuizScored      = "quiz_scored"
	EventClusterComplete = "cluster_complete"
	EventClusterRevealed = "cluster_revealed"
)

// Event is the payload published to a couple's subscribers.
type Event struct {
	Type     string          `json:"type"`
	CoupleID string          `json:"coupleId"`
	QuizID   string          `json:"quizId,omitempty"`
	Partner  quissme.Partner `json:"partner,omitempty"`
	Cluster  quissme.Cluster `json:"cluster,omitempty"`
	Zone     quissme.Zone    `json:"zone,omitempty"`
	DropID   string          `json:"dropId,omitempty"`
}

// Publisher delivers couple events to whoever is listening.
type Publisher interface {
	Publish(coupleID string, event Event)
}

// Broker is an in-process pub/sub for couple events, keyed by couple ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given couple.
func (b *Broker) Subscribe(coupleID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[coupleID] == nil {
		b.subs[coupleID] = make(map[chan []byte]struct{})
	}
	b.subs[coupleID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(coupleID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[coupleID], ch)
	if len(b.subs[coupleID]) == 0 {
		delete(b.subs, coupleID)
	}
	b.mu.Unlock()
}

func (b *Broker) Publish(coupleID string, event Event) {
	data, _ := json.Marshal(event)
	b.deliver(coupleID, data)
}

func (b *Broker) deliver(coupleID string, data []byte) {
	b.mu.RLock()
	for ch := range b.subs[coupleID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports how many streams are open for a couple.
func (b *Broker) Subscribers(coupleID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[coupleID])
}
