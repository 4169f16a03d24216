package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Session events
	EventGameStarted  EventType = "GAME_STARTED"
	EventDeckShuffled EventType = "DECK_SHUFFLED"
	EventDrewCard     EventType = "DREW_CARD"

	// Play events
	EventCardPlayed       EventType = "CARD_PLAYED"
	EventPlayNoEffect     EventType = "PLAY_NO_EFFECT"
	EventCreatureSummoned EventType = "CREATURE_SUMMONED"
	EventSpellCast        EventType = "SPELL_CAST"
	EventArtifactPlayed   EventType = "ARTIFACT_PLAYED"
	EventManaPaid         EventType = "MANA_PAID"
	EventManaAdded        EventType = "MANA_ADDED"

	// Combat and effect events
	EventCreatureAttacked EventType = "CREATURE_ATTACKED"
	EventCreatureDefeated EventType = "CREATURE_DEFEATED"
	EventCreatureDamaged  EventType = "CREATURE_DAMAGED"
	EventCreatureHealed   EventType = "CREATURE_HEALED"
	EventCreatureBuffed   EventType = "CREATURE_BUFFED"
	EventCreatureDebuffed EventType = "CREATURE_DEBUFFED"

	// Artifact events
	EventAbilityActivated  EventType = "ABILITY_ACTIVATED"
	EventArtifactExhausted EventType = "ARTIFACT_EXHAUSTED"

	// Zone events
	EventPutIntoGraveyard EventType = "PUT_INTO_GRAVEYARD"
)

// Event is an immutable record of something that happened in a game session.
type Event struct {
	Type        EventType
	GameID      string            // Session the event belongs to
	SourceID    string            // Card that caused the event
	TargetID    string            // Card the event applies to, if any
	Targets     []string          // Multiple targets (spell resolution)
	Amount      int               // Mana, damage or power involved
	Flag        bool              // Event-specific boolean (e.g. combat resolved)
	Data        string            // Additional string data (card name, kind)
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
// Listeners must not publish or subscribe from inside the callback.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// PublishBatch publishes multiple events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, gameID, sourceID, targetID string) Event {
	return Event{
		Type:      eventType,
		GameID:    gameID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, gameID, sourceID, targetID string, amount int) Event {
	evt := NewEvent(eventType, gameID, sourceID, targetID)
	evt.Amount = amount
	return evt
}
