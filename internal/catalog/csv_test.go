package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadeck/datadeck-server-go/internal/game/counters"
)

const sampleCSV = `deck,name,type,cost,rarity,attack,health,effect,power,target_count,target_mode,durability
reference,fire dragon,creature,5,legendary,7,5,,,,,
reference,Lightning Bolt,spell,3,Common,,,damage,3,1,exactly,
reference,Mana Crystal,artifact,2,Epic,,,mana,1,,,permanent
reference,Mana Totem,artifact,1,Uncommon,,,mana,2,,,3
tiny,Goblin Warrior,creature,3,Rare,4,6,,,,,
`

func TestReadCSV(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"reference", "tiny"}, c.Names())

	ref, err := c.Deck("reference")
	require.NoError(t, err)
	require.Len(t, ref, 4)
	assert.Equal(t, 7, ref[0].Attack)
	assert.Equal(t, "exactly", ref[1].TargetMode)
	assert.Nil(t, ref[0].Durability)
	require.NotNil(t, ref[2].Durability)
	assert.Equal(t, counters.Infinite, int(*ref[2].Durability))
	assert.Equal(t, 3, int(*ref[3].Durability))
}

func TestReadCSVColumnOrder(t *testing.T) {
	in := "name,deck,durability,type,cost,rarity,attack,health,effect,power,target_count,target_mode\n" +
		"Goblin Warrior,d,,creature,3,Rare,4,6,,,,\n"
	c, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	defs, err := c.Deck("d")
	require.NoError(t, err)
	assert.Equal(t, "Goblin Warrior", defs[0].Name)
}

func TestReadCSVErrors(t *testing.T) {
	header := strings.Join(CSVHeader, ",") + "\n"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "missing header"},
		{"missing column", "deck,name\n", `missing column "type"`},
		{"bad cost", header + "d,X,creature,lots,Common,1,1,,,,,\n", "cost"},
		{"no deck", header + ",X,creature,1,Common,1,1,,,,,\n", "deck is required"},
		{"bad durability", header + "d,X,artifact,1,Common,,,mana,1,,,forever\n", "durability"},
		{"invalid card", header + "d,X,creature,1,Mythic,1,1,,,,,\n", "deck d, card 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().WriteCSV(&buf))
	assert.Contains(t, buf.String(), "starter,Mana Crystal,artifact,2,Epic,0,0,mana,1,0,,permanent")

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	defs, err := back.Deck("starter")
	require.NoError(t, err)
	assert.Equal(t, Starter(), defs)
}
