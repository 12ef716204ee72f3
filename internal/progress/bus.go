package progress

import (
	"github.com/kelindar/event"
)

// Kind tags the payload carried by a Message.
type Kind uint8

const (
	KindUpdate Kind = iota + 1
	KindLog
	KindAlert
	KindResult
)

const typeMessage uint32 = 0x7673_0001

// Message is the single envelope published on the bus. Carrying every event
// kind in one type keeps per-subscriber delivery in publish order.
type Message struct {
	Kind   Kind
	Update Update
	Log    Log
	Alert  Alert
	Result Result
}

// Type implements event.Event.
func (Message) Type() uint32 { return typeMessage }

// JobID returns the job the message belongs to.
func (m Message) JobID() string {
	switch m.Kind {
	case KindUpdate:
		return m.Update.JobID
	case KindLog:
		return m.Log.JobID
	case KindAlert:
		return m.Alert.JobID
	case KindResult:
		return m.Result.JobID
	}
	return ""
}

// Bus broadcasts job events to any number of subscribers. Publishing never
// waits on a subscriber; each subscriber drains its own queue.
type Bus struct {
	dispatcher *event.Dispatcher
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Subscribe registers handler for every message and returns an unsubscribe func.
func (b *Bus) Subscribe(handler func(Message)) func() {
	return event.Subscribe(b.dispatcher, handler)
}

// SubscribeToChannel forwards messages into ch. Progress updates are dropped
// when ch is full; every other kind waits for room.
func (b *Bus) SubscribeToChannel(ch chan<- Message) func() {
	return b.Subscribe(func(m Message) {
		if m.Kind == KindUpdate {
			select {
			case ch <- m:
			default:
			}
			return
		}
		ch <- m
	})
}

func (b *Bus) Update(u Update) { event.Publish(b.dispatcher, Message{Kind: KindUpdate, Update: u}) }
func (b *Bus) Log(l Log)       { event.Publish(b.dispatcher, Message{Kind: KindLog, Log: l}) }
func (b *Bus) Alert(a Alert)   { event.Publish(b.dispatcher, Message{Kind: KindAlert, Alert: a}) }
func (b *Bus) Result(r Result) { event.Publish(b.dispatcher, Message{Kind: KindResult, Result: r}) }
