// Command demo plays the reference scenarios against the engine and prints
// each step to the console.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/catalog"
	"github.com/datadeck/datadeck-server-go/internal/game"
	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/counters"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
	"github.com/datadeck/datadeck-server-go/internal/game/mana"
)

var (
	seed    = flag.Int64("seed", 0, "shuffle seed; 0 picks a random one")
	verbose = flag.Bool("v", false, "log engine events")
	noColor = flag.Bool("no-color", false, "disable coloured output")
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	muted   = color.New(color.FgHiBlack)
	bad     = color.New(color.FgRed)
)

func main() {
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	steps := []func(*zap.Logger) error{
		creatureScenario,
		deckScenario,
		artifactScenario,
	}
	for _, step := range steps {
		if err := step(logger); err != nil {
			bad.Printf("demo failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
	}
	good.Println("All scenarios completed.")
}

func creatureScenario(_ *zap.Logger) error {
	heading.Println("=== Creature cards ===")

	dragon, err := cards.NewCreatureCard("fire dragon", 5, cards.Legendary, 7, 5)
	if err != nil {
		return err
	}
	goblin, err := cards.NewCreatureCard("goblin warrior", 3, cards.Rare, 4, 6)
	if err != nil {
		return err
	}

	printInfo(dragon.Info())

	gs := mana.NewGameState(6)
	fmt.Printf("Playable with %d mana: %v\n", gs.Available(), dragon.IsPlayable(gs.Available()))
	res, err := dragon.Play(gs, nil)
	if err != nil {
		return err
	}
	printPlay(res)
	fmt.Printf("Mana left: %d\n", gs.Available())

	atk := dragon.AttackTarget(goblin)
	good.Printf("%s attacks %s for %d damage (resolved: %v, target health %d)\n",
		atk.Attacker, atk.Target, atk.DamageDealt, atk.CombatResolved, goblin.Health())

	fmt.Printf("Playable with %d mana: %v\n", gs.Available(), dragon.IsPlayable(gs.Available()))
	res, err = dragon.Play(gs, nil)
	if err != nil {
		return err
	}
	printPlay(res)
	return nil
}

func deckScenario(logger *zap.Logger) error {
	heading.Println("=== Deck builder ===")

	var opts []deck.Option
	if *seed != 0 {
		opts = append(opts, deck.WithSeed(*seed))
	}
	d, err := catalog.BuildDeck(catalog.Starter(), opts...)
	if err != nil {
		return err
	}

	stats, err := d.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("Deck: %d cards (%d creatures, %d spells, %d artifacts), avg cost %.1f\n",
		stats.TotalCards, stats.Creatures, stats.Spells, stats.Artifacts, stats.AvgCost)
	muted.Printf("Fingerprint: %s\n", d.Fingerprint().Hash)

	s := game.NewSession(logger, d, 100)
	s.Shuffle()

	var creatures []string
	var spells []game.CardView
	for {
		c, err := s.Draw()
		if errors.Is(err, deck.ErrEmptyDeck) {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("Drew %s (%s, cost %d)\n", c.Name, c.Type, c.Cost)
		if c.Type == cards.KindSpell {
			spells = append(spells, c)
			continue
		}
		res, err := s.Play(c.ID, nil)
		if err != nil {
			return err
		}
		printPlay(res)
		if c.Type == cards.KindCreature {
			creatures = append(creatures, c.ID)
		}
	}

	for _, spell := range spells {
		want := spell.Spell.Targets.Count
		if want > len(creatures) {
			want = len(creatures)
		}
		res, err := s.Play(spell.ID, creatures[:want])
		if err != nil {
			bad.Printf("%s: %v\n", spell.Name, err)
			continue
		}
		printPlay(res)
	}

	st := s.Stats()
	fmt.Printf("Mana spent %d, spells cast %d, creatures defeated %d\n",
		st.ManaSpent, st.SpellsCast, st.CreaturesDefeated)
	fmt.Printf("Mana left: %d\n", s.State().Mana.AvailableMana)
	return nil
}

func artifactScenario(_ *zap.Logger) error {
	heading.Println("=== Artifacts ===")

	crystal, err := cards.NewArtifactCard("mana crystal", 2, cards.Epic, cards.ArtifactMana, 1, counters.Infinite)
	if err != nil {
		return err
	}
	printInfo(crystal.Info())

	gs := mana.NewGameState(0)
	for i := 0; i < 2; i++ {
		act, err := crystal.ActivateAbility(gs)
		if err != nil {
			return err
		}
		good.Printf("%s: %s (durability %s), mana now %d\n",
			act.CardPlayed, act.AbilityActivated, act.DurabilityRemaining, gs.Available())
	}

	totem, err := cards.NewArtifactCard("mana totem", 1, cards.Uncommon, cards.ArtifactMana, 2, 1)
	if err != nil {
		return err
	}
	if _, err := totem.ActivateAbility(gs); err != nil {
		return err
	}
	if _, err := totem.ActivateAbility(gs); err != nil {
		bad.Printf("%s: %v\n", totem.Name(), err)
	}
	fmt.Printf("Mana now %d\n", gs.Available())
	return nil
}

func printInfo(info cards.Info) {
	fmt.Printf("%s [%s] cost %d, %s\n", info.Name, info.Rarity, info.Cost, info.Type)
	switch {
	case info.Creature != nil:
		muted.Printf("  attack %d, health %d\n", info.Creature.Attack, info.Creature.Health)
	case info.Spell != nil:
		muted.Printf("  %s\n", info.Spell.Description)
	case info.Artifact != nil:
		muted.Printf("  %s, durability %s\n", info.Artifact.Description, info.Artifact.Durability)
	}
}

func printPlay(res cards.PlayResult) {
	if !res.Played() {
		muted.Println("Not enough mana; no effect")
		return
	}
	good.Printf("Played %s for %d mana: %s\n", res.CardPlayed, res.ManaUsed, res.Effect())
}
