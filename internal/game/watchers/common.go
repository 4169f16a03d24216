package watchers

import (
	"github.com/datadeck/datadeck-server-go/internal/game/rules"
)

// SpellsCastWatcher tracks spells cast in a session.
type SpellsCastWatcher struct {
	*rules.BaseWatcher
	spellsCast []string // spell IDs in cast order
}

// NewSpellsCastWatcher creates a new spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	w := &SpellsCastWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
	}
	w.SetKey("SpellsCastWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *SpellsCastWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSpellCast || event.SourceID == "" {
		return
	}
	w.spellsCast = append(w.spellsCast, event.SourceID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *SpellsCastWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.spellsCast = nil
}

// GetSpellsCast returns the IDs of the spells cast so far.
func (w *SpellsCastWatcher) GetSpellsCast() []string {
	return append([]string(nil), w.spellsCast...)
}

// GetCount returns the number of spells cast.
func (w *SpellsCastWatcher) GetCount() int {
	return len(w.spellsCast)
}

// Copy creates a copy of this watcher.
func (w *SpellsCastWatcher) Copy() rules.Watcher {
	cpy := NewSpellsCastWatcher()
	cpy.SetSourceID(w.GetSourceID())
	cpy.SetCondition(w.ConditionMet())
	cpy.spellsCast = append([]string(nil), w.spellsCast...)
	return cpy
}

// CreaturesDefeatedWatcher tracks creatures whose health dropped to zero or below.
type CreaturesDefeatedWatcher struct {
	*rules.BaseWatcher
	defeated map[string]int // creature name -> count
	total    int
}

// NewCreaturesDefeatedWatcher creates a new creatures defeated watcher.
func NewCreaturesDefeatedWatcher() *CreaturesDefeatedWatcher {
	w := &CreaturesDefeatedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		defeated:    make(map[string]int),
	}
	w.SetKey("CreaturesDefeatedWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *CreaturesDefeatedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCreatureDefeated {
		return
	}
	w.defeated[event.Data]++
	w.total++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CreaturesDefeatedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.defeated = make(map[string]int)
	w.total = 0
}

// GetAmountByName returns how many creatures with the given name were defeated.
func (w *CreaturesDefeatedWatcher) GetAmountByName(name string) int {
	return w.defeated[name]
}

// GetTotalAmount returns the total number of creatures defeated.
func (w *CreaturesDefeatedWatcher) GetTotalAmount() int {
	return w.total
}

// Copy creates a copy of this watcher.
func (w *CreaturesDefeatedWatcher) Copy() rules.Watcher {
	cpy := NewCreaturesDefeatedWatcher()
	cpy.SetSourceID(w.GetSourceID())
	cpy.SetCondition(w.ConditionMet())
	for k, v := range w.defeated {
		cpy.defeated[k] = v
	}
	cpy.total = w.total
	return cpy
}

// CardsDrawnWatcher counts cards drawn from the deck.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	cardsDrawn int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
	}
	w.SetKey("CardsDrawnWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDrewCard {
		return
	}
	w.cardsDrawn++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.cardsDrawn = 0
}

// GetCount returns the number of cards drawn.
func (w *CardsDrawnWatcher) GetCount() int {
	return w.cardsDrawn
}

// Copy creates a copy of this watcher.
func (w *CardsDrawnWatcher) Copy() rules.Watcher {
	cpy := NewCardsDrawnWatcher()
	cpy.SetSourceID(w.GetSourceID())
	cpy.SetCondition(w.ConditionMet())
	cpy.cardsDrawn = w.cardsDrawn
	return cpy
}

// ManaWatcher tallies mana paid for cards and mana generated by artifacts.
type ManaWatcher struct {
	*rules.BaseWatcher
	spent     int
	generated int
}

// NewManaWatcher creates a new mana watcher.
func NewManaWatcher() *ManaWatcher {
	w := &ManaWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
	}
	w.SetKey("ManaWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *ManaWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventManaPaid:
		w.spent += event.Amount
	case rules.EventManaAdded:
		w.generated += event.Amount
	default:
		return
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *ManaWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.spent = 0
	w.generated = 0
}

// GetSpent returns the total mana paid for cards.
func (w *ManaWatcher) GetSpent() int {
	return w.spent
}

// GetGenerated returns the total mana added by artifact abilities.
func (w *ManaWatcher) GetGenerated() int {
	return w.generated
}

// Copy creates a copy of this watcher.
func (w *ManaWatcher) Copy() rules.Watcher {
	cpy := NewManaWatcher()
	cpy.SetSourceID(w.GetSourceID())
	cpy.SetCondition(w.ConditionMet())
	cpy.spent = w.spent
	cpy.generated = w.generated
	return cpy
}

// ArtifactActivationsWatcher counts ability activations of a single artifact.
// Its condition is met once the artifact is exhausted.
type ArtifactActivationsWatcher struct {
	*rules.BaseWatcher
	activations int
}

// NewArtifactActivationsWatcher creates a card scoped watcher for artifactID.
func NewArtifactActivationsWatcher(artifactID string) *ArtifactActivationsWatcher {
	w := &ArtifactActivationsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeCard),
	}
	w.SetSourceID(artifactID)
	return w
}

// Watch implements the Watcher interface.
func (w *ArtifactActivationsWatcher) Watch(event rules.Event) {
	if event.SourceID != w.GetSourceID() {
		return
	}
	switch event.Type {
	case rules.EventAbilityActivated:
		w.activations++
	case rules.EventArtifactExhausted:
		w.SetCondition(true)
	}
}

// Reset clears the watcher's state.
func (w *ArtifactActivationsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.activations = 0
}

// GetCount returns the number of activations observed.
func (w *ArtifactActivationsWatcher) GetCount() int {
	return w.activations
}

// Copy creates a copy of this watcher.
func (w *ArtifactActivationsWatcher) Copy() rules.Watcher {
	cpy := NewArtifactActivationsWatcher(w.GetSourceID())
	cpy.SetKey(w.GetKey())
	cpy.SetCondition(w.ConditionMet())
	cpy.activations = w.activations
	return cpy
}
