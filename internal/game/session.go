// Package game hosts live card-game sessions. A Session owns one GameState,
// its deck and the hand, battlefield and graveyard zones, and serialises every
// mutation behind a single mutex.
package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
	"github.com/datadeck/datadeck-server-go/internal/game/mana"
	"github.com/datadeck/datadeck-server-go/internal/game/rules"
	"github.com/datadeck/datadeck-server-go/internal/game/watchers"
)

var (
	// ErrGameNotFound is returned when no session has the requested ID.
	ErrGameNotFound = errors.New("game not found")
	// ErrCardNotFound is returned when a card ID is not in the expected zone.
	ErrCardNotFound = errors.New("card not found")
	// ErrNotOnBoard is returned when a card must be on the battlefield but is not.
	ErrNotOnBoard = errors.New("card is not on the battlefield")
	// ErrWrongKind is returned when an operation is applied to the wrong card kind.
	ErrWrongKind = errors.New("wrong card kind")
	// ErrSelfAttack is returned when a creature is told to attack itself.
	ErrSelfAttack = errors.New("a creature cannot attack itself")
)

// CardView is a card in a zone, addressed by its instance ID.
type CardView struct {
	ID string `json:"id"`
	cards.Info
}

// View is a point-in-time picture of a session.
type View struct {
	GameID      string        `json:"game_id"`
	Mana        mana.Snapshot `json:"mana"`
	DeckSize    int           `json:"deck_size"`
	Hand        []CardView    `json:"hand"`
	Battlefield []CardView    `json:"battlefield"`
	Graveyard   []CardView    `json:"graveyard"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Stats combines the deck summary with the session tallies kept by watchers.
type Stats struct {
	Deck              *deck.Stats `json:"deck,omitempty"`
	CardsDrawn        int         `json:"cards_drawn"`
	SpellsCast        int         `json:"spells_cast"`
	CreaturesDefeated int         `json:"creatures_defeated"`
	ManaSpent         int         `json:"mana_spent"`
	ManaGenerated     int         `json:"mana_generated"`
}

// Session is one running game.
type Session struct {
	id        string
	logger    *zap.Logger
	createdAt time.Time

	mu          sync.Mutex
	state       *mana.GameState
	deck        *deck.Deck
	hand        []cards.Card
	battlefield []cards.Card
	graveyard   []cards.Card
	sequence    int

	bus      *rules.EventBus
	watchers *rules.WatcherRegistry
	spells   *watchers.SpellsCastWatcher
	defeated *watchers.CreaturesDefeatedWatcher
	drawn    *watchers.CardsDrawnWatcher
	manaFlow *watchers.ManaWatcher
	recorder *ReplayRecorder
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecorder records a snapshot of the session after every mutation.
func WithRecorder(rr *ReplayRecorder) SessionOption {
	return func(s *Session) {
		s.recorder = rr
	}
}

// NewSession starts a game over d with startingMana available.
func NewSession(logger *zap.Logger, d *deck.Deck, startingMana int, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if d == nil {
		d = deck.New()
	}
	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		state:     mana.NewGameState(startingMana),
		deck:      d,
		bus:       rules.NewEventBus(),
		watchers:  rules.NewWatcherRegistry(),
		spells:    watchers.NewSpellsCastWatcher(),
		defeated:  watchers.NewCreaturesDefeatedWatcher(),
		drawn:     watchers.NewCardsDrawnWatcher(),
		manaFlow:  watchers.NewManaWatcher(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.With(zap.String("game_id", s.id))

	s.watchers.AddWatcher(s.spells)
	s.watchers.AddWatcher(s.defeated)
	s.watchers.AddWatcher(s.drawn)
	s.watchers.AddWatcher(s.manaFlow)
	s.watchers.Attach(s.bus)

	if s.recorder != nil {
		s.recorder.Track(s.id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	evt := rules.NewEventWithAmount(rules.EventGameStarted, s.id, "", "", startingMana)
	evt.Description = fmt.Sprintf("game started with %d cards and %d mana", d.Len(), s.state.Available())
	s.publish(evt)
	s.record("start")

	s.logger.Info("game started",
		zap.Int("deck_size", d.Len()),
		zap.Int("starting_mana", s.state.Available()),
	)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Events exposes the session event bus for additional subscribers.
func (s *Session) Events() *rules.EventBus {
	return s.bus
}

// Shuffle shuffles the remaining deck.
func (s *Session) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deck.Shuffle()
	s.publish(rules.NewEventWithAmount(rules.EventDeckShuffled, s.id, "", "", s.deck.Len()))
	s.record("shuffle")
	s.logger.Debug("deck shuffled", zap.Int("deck_size", s.deck.Len()))
}

// Draw moves the top card of the deck into the hand.
func (s *Session) Draw() (CardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := s.deck.DrawCard()
	if err != nil {
		return CardView{}, fmt.Errorf("draw: %w", err)
	}
	s.hand = append(s.hand, card)

	evt := rules.NewEvent(rules.EventDrewCard, s.id, card.ID(), "")
	evt.Data = card.Name()
	s.publish(evt)
	s.record("draw")

	s.logger.Debug("card drawn",
		zap.String("card_id", card.ID()),
		zap.String("card", card.Name()),
		zap.Int("deck_size", s.deck.Len()),
	)
	return view(card), nil
}

// Play plays a card from the hand. Targets are addressed by ID, must be on
// the battlefield and may each be named once. When the card cannot be afforded the result has
// cards.OutcomeNoEffect and the card stays in the hand.
func (s *Session) Play(cardID string, targetIDs []string) (cards.PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, card := find(s.hand, cardID)
	if card == nil {
		if _, onBoard := find(s.battlefield, cardID); onBoard != nil {
			return cards.PlayResult{}, fmt.Errorf("play %s: already on the battlefield: %w", cardID, ErrCardNotFound)
		}
		return cards.PlayResult{}, fmt.Errorf("play %s: %w", cardID, ErrCardNotFound)
	}

	targets := make([]cards.Card, 0, len(targetIDs))
	seen := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		if seen[id] {
			return cards.PlayResult{}, fmt.Errorf("play %s: target %s named twice: %w", card.Name(), id, cards.ErrInvalidTarget)
		}
		seen[id] = true
		_, target := find(s.battlefield, id)
		if target == nil {
			return cards.PlayResult{}, fmt.Errorf("play %s: target %s: %w", card.Name(), id, ErrCardNotFound)
		}
		targets = append(targets, target)
	}

	before := s.state.Available()
	res, err := card.Play(s.state, targets)
	if err != nil {
		s.logger.Debug("play rejected",
			zap.String("card_id", cardID),
			zap.String("card", card.Name()),
			zap.Error(err),
		)
		return res, fmt.Errorf("play %s: %w", card.Name(), err)
	}

	if !res.Played() {
		evt := rules.NewEventWithAmount(rules.EventPlayNoEffect, s.id, card.ID(), "", before)
		evt.Data = card.Name()
		s.publish(evt)
		s.logger.Debug("card not affordable",
			zap.String("card", card.Name()),
			zap.Int("cost", card.Cost()),
			zap.Int("available_mana", before),
		)
		return res, nil
	}

	s.hand = remove(s.hand, idx)
	s.publish(rules.NewEventWithAmount(rules.EventManaPaid, s.id, card.ID(), "", res.ManaUsed))

	switch c := card.(type) {
	case *cards.CreatureCard:
		s.battlefield = append(s.battlefield, c)
		s.publish(rules.NewEvent(rules.EventCreatureSummoned, s.id, c.ID(), ""))
	case *cards.SpellCard:
		evt := rules.NewEvent(rules.EventSpellCast, s.id, c.ID(), "")
		evt.Targets = append([]string(nil), targetIDs...)
		evt.Data = c.Description()
		s.publish(evt)
		s.applySpellEvents(c, targets)
		s.graveyard = append(s.graveyard, c)
		s.publish(rules.NewEvent(rules.EventPutIntoGraveyard, s.id, c.ID(), ""))
	case *cards.ArtifactCard:
		s.battlefield = append(s.battlefield, c)
		s.watchers.AddWatcher(watchers.NewArtifactActivationsWatcher(c.ID()))
		s.publish(rules.NewEvent(rules.EventArtifactPlayed, s.id, c.ID(), ""))
	}

	played := rules.NewEventWithAmount(rules.EventCardPlayed, s.id, card.ID(), "", res.ManaUsed)
	played.Data = string(card.Kind())
	played.Description = res.Effect()
	s.publish(played)
	s.record("play")

	s.logger.Info("card played",
		zap.String("card_id", card.ID()),
		zap.String("card", card.Name()),
		zap.String("kind", string(card.Kind())),
		zap.Int("mana_used", res.ManaUsed),
		zap.Int("available_mana", s.state.Available()),
	)
	return res, nil
}

func (s *Session) applySpellEvents(spell *cards.SpellCard, targets []cards.Card) {
	var eventType rules.EventType
	switch spell.EffectType() {
	case cards.EffectDamage:
		eventType = rules.EventCreatureDamaged
	case cards.EffectHeal:
		eventType = rules.EventCreatureHealed
	case cards.EffectBuff:
		eventType = rules.EventCreatureBuffed
	case cards.EffectDebuff:
		eventType = rules.EventCreatureDebuffed
	default:
		return
	}
	for _, t := range targets {
		s.publish(rules.NewEventWithAmount(eventType, s.id, spell.ID(), t.ID(), spell.EffectPower()))
		if c, ok := t.(*cards.CreatureCard); ok {
			s.checkDefeated(spell.ID(), c)
		}
	}
}

// checkDefeated moves a creature whose health has dropped to zero or below
// from the battlefield to the graveyard.
func (s *Session) checkDefeated(sourceID string, c *cards.CreatureCard) {
	if !c.Defeated() {
		return
	}
	idx, onBoard := find(s.battlefield, c.ID())
	if onBoard == nil {
		return
	}
	s.battlefield = remove(s.battlefield, idx)
	s.graveyard = append(s.graveyard, c)

	evt := rules.NewEvent(rules.EventCreatureDefeated, s.id, sourceID, c.ID())
	evt.Data = c.Name()
	s.publish(evt)
	s.publish(rules.NewEvent(rules.EventPutIntoGraveyard, s.id, c.ID(), ""))
	s.logger.Info("creature defeated",
		zap.String("card_id", c.ID()),
		zap.String("card", c.Name()),
		zap.Int("health", c.Health()),
	)
}

// Attack has one creature on the battlefield attack another.
func (s *Session) Attack(attackerID, targetID string) (cards.AttackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attackerID == targetID {
		return cards.AttackResult{}, fmt.Errorf("attack %s: %w", attackerID, ErrSelfAttack)
	}

	attacker, err := s.creatureOnBoard(attackerID)
	if err != nil {
		return cards.AttackResult{}, fmt.Errorf("attack: attacker: %w", err)
	}
	target, err := s.creatureOnBoard(targetID)
	if err != nil {
		return cards.AttackResult{}, fmt.Errorf("attack: target: %w", err)
	}

	res := attacker.AttackTarget(target)

	evt := rules.NewEventWithAmount(rules.EventCreatureAttacked, s.id, attacker.ID(), target.ID(), res.DamageDealt)
	evt.Flag = res.CombatResolved
	s.publish(evt)
	s.checkDefeated(attacker.ID(), target)
	s.record("attack")

	s.logger.Info("creature attacked",
		zap.String("attacker", res.Attacker),
		zap.String("target", res.Target),
		zap.Int("damage", res.DamageDealt),
		zap.Bool("combat_resolved", res.CombatResolved),
	)
	return res, nil
}

// Activate activates the ability of an artifact on the battlefield.
func (s *Session) Activate(cardID string) (cards.ActivationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := s.onBoard(cardID)
	if err != nil {
		return cards.ActivationResult{}, fmt.Errorf("activate: %w", err)
	}
	artifact, ok := card.(*cards.ArtifactCard)
	if !ok {
		return cards.ActivationResult{}, fmt.Errorf("activate %s: %s is not an artifact: %w", card.Name(), card.Kind(), ErrWrongKind)
	}

	res, err := artifact.ActivateAbility(s.state)
	if err != nil {
		s.logger.Debug("activation rejected",
			zap.String("card_id", cardID),
			zap.String("card", artifact.Name()),
			zap.Error(err),
		)
		return res, fmt.Errorf("activate %s: %w", artifact.Name(), err)
	}

	s.publish(rules.NewEventWithAmount(rules.EventAbilityActivated, s.id, artifact.ID(), "", artifact.EffectPower()))
	s.publish(rules.NewEventWithAmount(rules.EventManaAdded, s.id, artifact.ID(), "", artifact.EffectPower()))
	if artifact.Exhausted() {
		s.publish(rules.NewEvent(rules.EventArtifactExhausted, s.id, artifact.ID(), ""))
	}
	s.record("activate")

	s.logger.Info("ability activated",
		zap.String("card_id", artifact.ID()),
		zap.String("card", artifact.Name()),
		zap.Stringer("durability_remaining", res.DurabilityRemaining),
		zap.Int("available_mana", s.state.Available()),
	)
	return res, nil
}

// ActivationCount returns how many times the artifact has been activated.
func (s *Session) ActivationCount(cardID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.watchers.GetAllWatchers() {
		if aw, ok := w.(*watchers.ArtifactActivationsWatcher); ok && aw.GetSourceID() == cardID {
			return aw.GetCount()
		}
	}
	return 0
}

// State returns a view of the session.
func (s *Session) State() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Stats returns the deck summary and session tallies. Deck is nil once the
// deck is empty.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		CardsDrawn:        s.drawn.GetCount(),
		SpellsCast:        s.spells.GetCount(),
		CreaturesDefeated: s.defeated.GetTotalAmount(),
		ManaSpent:         s.manaFlow.GetSpent(),
		ManaGenerated:     s.manaFlow.GetGenerated(),
	}
	if ds, err := s.deck.Stats(); err == nil {
		st.Deck = &ds
	}
	return st
}

func (s *Session) view() View {
	return View{
		GameID:      s.id,
		Mana:        s.state.Snapshot(),
		DeckSize:    s.deck.Len(),
		Hand:        views(s.hand),
		Battlefield: views(s.battlefield),
		Graveyard:   views(s.graveyard),
		CreatedAt:   s.createdAt,
	}
}

func (s *Session) onBoard(cardID string) (cards.Card, error) {
	if _, c := find(s.battlefield, cardID); c != nil {
		return c, nil
	}
	if _, c := find(s.hand, cardID); c != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrNotOnBoard)
	}
	return nil, fmt.Errorf("%s: %w", cardID, ErrCardNotFound)
}

func (s *Session) creatureOnBoard(cardID string) (*cards.CreatureCard, error) {
	card, err := s.onBoard(cardID)
	if err != nil {
		return nil, err
	}
	c, ok := card.(*cards.CreatureCard)
	if !ok {
		return nil, fmt.Errorf("%s is a %s: %w", card.Name(), card.Kind(), ErrWrongKind)
	}
	return c, nil
}

func (s *Session) publish(evt rules.Event) {
	s.bus.Publish(evt)
}

// record must be called with s.mu held.
func (s *Session) record(action string) {
	if s.recorder == nil {
		return
	}
	s.sequence++
	v := s.view()
	s.recorder.Record(s.id, &Snapshot{
		GameID:      s.id,
		Sequence:    s.sequence,
		Action:      action,
		Mana:        v.Mana.AvailableMana,
		DeckSize:    v.DeckSize,
		Hand:        v.Hand,
		Battlefield: v.Battlefield,
		Graveyard:   v.Graveyard,
		Timestamp:   time.Now(),
	})
}

func view(c cards.Card) CardView {
	return CardView{ID: c.ID(), Info: c.Info()}
}

func views(cs []cards.Card) []CardView {
	out := make([]CardView, 0, len(cs))
	for _, c := range cs {
		out = append(out, view(c))
	}
	return out
}

func find(zone []cards.Card, id string) (int, cards.Card) {
	for i, c := range zone {
		if c.ID() == id {
			return i, c
		}
	}
	return -1, nil
}

func remove(zone []cards.Card, idx int) []cards.Card {
	return append(zone[:idx], zone[idx+1:]...)
}
