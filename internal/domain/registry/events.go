package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// EventType identifies what changed in the store
type EventType string

const (
	EventRecordAdded      EventType = "record_added"
	EventRecordUpdated    EventType = "record_updated"
	EventRecordDeleted    EventType = "record_deleted"
	EventContractAdded    EventType = "contract_added"
	EventContractUpdated  EventType = "contract_updated"
	EventContractDeleted  EventType = "contract_deleted"
	EventSnapshotImported EventType = "snapshot_imported"
)

// Event describes one committed mutation.
//
// Record carries the stored agent after create/update and the removed agent
// after delete. Patch and Fields are set for updates only. Contract events
// carry Contract instead of Record.
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	RecordID  string               `json:"record_id"`
	Record    *types.Agent         `json:"record,omitempty"`
	Patch     *types.AgentPatch    `json:"patch,omitempty"`
	Fields    []string             `json:"fields,omitempty"`
	Contract  *types.Contract      `json:"contract,omitempty"`
	CPatch    *types.ContractPatch `json:"contract_patch,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// clone gives each listener its own copy so one cannot corrupt another's view
func (e Event) clone() Event {
	out := e
	if e.Record != nil {
		r := e.Record.Clone()
		out.Record = &r
	}
	if e.Contract != nil {
		c := e.Contract.Clone()
		out.Contract = &c
	}
	if e.Fields != nil {
		out.Fields = append([]string(nil), e.Fields...)
	}
	return out
}

// Listener observes store events.
//
// HandleEvent runs on the goroutine that committed the mutation. A listener
// that writes to the store must pass the ctx it was handed: that write
// returns at once and its event is delivered after the current one has
// reached every listener. A write made with any other context waits for
// its own turn and would deadlock the dispatch.
type Listener interface {
	HandleEvent(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(context.Context, Event)

// HandleEvent calls f(ctx, ev)
func (f ListenerFunc) HandleEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// SubscriptionID identifies a registered listener
type SubscriptionID string

type subscription struct {
	id       SubscriptionID
	listener Listener
}

// Subscribe registers l; it receives every event committed after this call
func (s *Store) Subscribe(l Listener) SubscriptionID {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	sub := subscription{id: SubscriptionID(uuid.NewString()), listener: l}
	s.subs = append(s.subs, sub)
	return sub.id
}

// Unsubscribe removes a listener. It returns false if id is unknown.
func (s *Store) Unsubscribe(id SubscriptionID) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return true
		}
	}
	return false
}

type dispatchKey struct{}

// dispatchFrame rides in the context handed to listeners. Events committed
// through that context are delivered by the frame's goroutine.
type dispatchFrame struct {
	store  *Store
	nested []uint64
	done   bool
}

// ticket is an event's place in the delivery order
type ticket struct {
	seq    uint64
	nested bool
}

// enqueueLocked stamps ev and gives it the next delivery turn. Callers hold
// mu, so turns follow commit order.
func (s *Store) enqueueLocked(ctx context.Context, ev Event) ticket {
	ev.ID = uuid.NewString()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.eventSeq++
	s.pending[s.eventSeq] = ev
	if f, _ := ctx.Value(dispatchKey{}).(*dispatchFrame); f != nil && f.store == s && !f.done {
		f.nested = append(f.nested, s.eventSeq)
		return ticket{seq: s.eventSeq, nested: true}
	}
	return ticket{seq: s.eventSeq}
}

// dispatch delivers the event behind t once every earlier event is out,
// then any events its listeners committed. Nested tickets return at once;
// the enclosing dispatch delivers them.
func (s *Store) dispatch(ctx context.Context, t ticket) {
	if t.nested {
		return
	}

	frame := &dispatchFrame{store: s}
	dctx := context.WithValue(context.WithoutCancel(ctx), dispatchKey{}, frame)

	for queue := []uint64{t.seq}; len(queue) > 0; {
		next := queue[0]
		queue = queue[1:]

		s.dispatchMu.Lock()
		for s.delivered+1 != next {
			s.turn.Wait()
		}
		ev := s.pending[next]
		delete(s.pending, next)
		subs := append([]subscription(nil), s.subs...)
		s.dispatchMu.Unlock()

		for _, sub := range subs {
			s.deliver(dctx, sub, ev)
		}
		s.metrics.RecordEvent(string(ev.Type))

		s.dispatchMu.Lock()
		s.delivered = next
		queue = append(queue, frame.nested...)
		frame.nested = nil
		frame.done = len(queue) == 0
		s.turn.Broadcast()
		s.dispatchMu.Unlock()
	}
}

func (s *Store) deliver(ctx context.Context, sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordListenerPanic()
			s.logger.Error("Event listener panicked",
				zap.String("subscription", string(sub.id)),
				zap.String("event", string(ev.Type)),
				zap.String("record_id", ev.RecordID),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	sub.listener.HandleEvent(ctx, ev.clone())
}
