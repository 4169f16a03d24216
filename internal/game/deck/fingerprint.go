package deck

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is a deterministic hash of the deck order and card identities.
// Two decks built from the same definitions in the same order share a
// fingerprint; instance IDs are excluded because they are random.
type Fingerprint struct {
	Hash  string
	Cards int
}

// Fingerprint hashes the deck in draw order.
func (d *Deck) Fingerprint() Fingerprint {
	var buf bytes.Buffer
	for _, c := range d.cards {
		buf.WriteString(fmt.Sprintf("CARD:%s|%s|%d|%s\n", c.Kind(), c.Name(), c.Cost(), c.Rarity()))
	}
	sum := blake2b.Sum256(buf.Bytes())
	return Fingerprint{
		Hash:  hex.EncodeToString(sum[:]),
		Cards: len(d.cards),
	}
}
