package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVHeader is the column layout read by ReadCSV and written by WriteCSV.
var CSVHeader = []string{
	"deck", "name", "type", "cost", "rarity",
	"attack", "health",
	"effect", "power", "target_count", "target_mode", "durability",
}

// ReadCSV parses deck definitions from CSV. The first row must be CSVHeader
// (columns may appear in any order). Rows keep their file order within each
// deck; empty numeric cells read as zero and an empty durability as permanent.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range CSVHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", name)
		}
	}

	c := &Catalog{Decks: make(map[string][]Definition)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}

		field := func(name string) string {
			return strings.TrimSpace(record[cols[name]])
		}
		number := func(name string) (int, error) {
			v := field(name)
			if v == "" {
				return 0, nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("csv line %d: %s %q: %w", line, name, v, err)
			}
			return n, nil
		}

		deckName := field("deck")
		if deckName == "" {
			return nil, fmt.Errorf("csv line %d: deck is required", line)
		}
		def := Definition{
			Name:       field("name"),
			Type:       field("type"),
			Rarity:     field("rarity"),
			Effect:     field("effect"),
			TargetMode: field("target_mode"),
		}
		for name, dst := range map[string]*int{
			"cost":         &def.Cost,
			"attack":       &def.Attack,
			"health":       &def.Health,
			"power":        &def.Power,
			"target_count": &def.TargetCount,
		} {
			if *dst, err = number(name); err != nil {
				return nil, err
			}
		}
		if v := field("durability"); v != "" {
			d, err := ParseDurability(v)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: %w", line, err)
			}
			def.Durability = &d
		}
		c.Decks[deckName] = append(c.Decks[deckName], def)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteCSV writes the catalog in the ReadCSV layout, decks in name order.
func (c *Catalog) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, name := range c.Names() {
		for _, def := range c.Decks[name] {
			durability := ""
			if def.Durability != nil {
				v, _ := def.Durability.MarshalYAML()
				durability = fmt.Sprint(v)
			}
			record := []string{
				name, def.Name, def.Type, strconv.Itoa(def.Cost), def.Rarity,
				strconv.Itoa(def.Attack), strconv.Itoa(def.Health),
				def.Effect, strconv.Itoa(def.Power), strconv.Itoa(def.TargetCount), def.TargetMode, durability,
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
