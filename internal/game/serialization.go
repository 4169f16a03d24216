package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
)

// SerializationChecksum is a deterministic checksum of a snapshot. It guards
// replays against divergent or corrupted state.
type SerializationChecksum struct {
	Hash      string // SHA-256 of the canonical representation
	Timestamp string // when the snapshot was taken
	Version   int    // canonical format version
}

const checksumVersion = 1

// ComputeChecksum hashes the snapshot. The timestamp is excluded, so two
// sessions that reach the same state produce the same hash.
func (snapshot *Snapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(snapshot.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: snapshot.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   checksumVersion,
	}, nil
}

// canonical renders the snapshot one line per record. Zone order is kept
// because hand and battlefield order are part of the game state.
func (snapshot *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%d|%d\n",
		snapshot.GameID,
		snapshot.Sequence,
		snapshot.Action,
		snapshot.Mana,
		snapshot.DeckSize,
	)

	zones := []struct {
		name  string
		cards []CardView
	}{
		{"HAND", snapshot.Hand},
		{"BATTLEFIELD", snapshot.Battlefield},
		{"GRAVEYARD", snapshot.Graveyard},
	}
	for _, zone := range zones {
		fmt.Fprintf(&buf, "ZONE:%s|%d\n", zone.name, len(zone.cards))
		for _, c := range zone.cards {
			writeCard(&buf, c)
		}
	}

	return buf.String()
}

func writeCard(buf *bytes.Buffer, c CardView) {
	fmt.Fprintf(buf, "CARD:%s|%s|%s|%d|%s", c.ID, c.Type, c.Name, c.Cost, c.Rarity)
	switch {
	case c.Creature != nil:
		fmt.Fprintf(buf, "|%d|%d|%t", c.Creature.Attack, c.Creature.Health, c.Creature.OnBoard)
	case c.Spell != nil:
		fmt.Fprintf(buf, "|%s|%d|%d|%s|%t",
			c.Spell.EffectType, c.Spell.EffectPower, c.Spell.Targets.Count, c.Spell.Targets.Mode, c.Spell.Consumed)
	case c.Artifact != nil:
		fmt.Fprintf(buf, "|%s|%d|%s", c.Artifact.EffectType, c.Artifact.EffectPower, c.Artifact.Durability)
	}
	buf.WriteByte('\n')
}

// VerifyChecksum reports whether the snapshot still matches expected.
func (snapshot *Snapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("expected checksum is nil")
	}
	actual, err := snapshot.ComputeChecksum()
	if err != nil {
		return false, err
	}
	return actual.Hash == expected.Hash, nil
}

// SerializeToBytes gob-encodes the snapshot, the encoding replay files use.
func (snapshot *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a snapshot produced by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// ValidateSerializationRoundtrip checks that the snapshot survives encoding
// without changing its checksum.
func ValidateSerializationRoundtrip(snapshot *Snapshot) error {
	before, err := snapshot.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := snapshot.SerializeToBytes()
	if err != nil {
		return err
	}
	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return err
	}
	after, err := decoded.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute decoded checksum: %w", err)
	}
	if before.Hash != after.Hash {
		return fmt.Errorf("checksum mismatch after roundtrip: %s != %s", before.Hash, after.Hash)
	}
	return nil
}

// VerifyReplay checks every snapshot of a replay for a clean roundtrip and
// strictly increasing sequence numbers.
func VerifyReplay(r *Replay) error {
	last := 0
	for i, s := range r.list() {
		if s.Sequence <= last {
			return fmt.Errorf("snapshot %d: sequence %d does not follow %d", i, s.Sequence, last)
		}
		last = s.Sequence
		if err := ValidateSerializationRoundtrip(s); err != nil {
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
	}
	return nil
}
