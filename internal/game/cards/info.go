package cards

import "github.com/datadeck/datadeck-server-go/internal/game/targeting"

// Info is the inspection view of a card: the shared base fields plus the
// extension of its kind. Exactly one extension is set, matching Type.
type Info struct {
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Rarity Rarity `json:"rarity"`
	Type   Kind   `json:"type"`

	Creature *CreatureInfo `json:"creature,omitempty"`
	Spell    *SpellInfo    `json:"spell,omitempty"`
	Artifact *ArtifactInfo `json:"artifact,omitempty"`
}

type CreatureInfo struct {
	Attack  int  `json:"attack"`
	Health  int  `json:"health"`
	OnBoard bool `json:"on_board"`
}

type SpellInfo struct {
	EffectType  SpellEffect      `json:"effect_type"`
	EffectPower int              `json:"effect_power"`
	Targets     targeting.Policy `json:"targets"`
	Description string           `json:"effect"`
	Consumed    bool             `json:"consumed"`
}

type ArtifactInfo struct {
	EffectType  ArtifactEffect `json:"effect_type"`
	EffectPower int            `json:"effect_power"`
	Durability  string         `json:"durability"`
	Description string         `json:"effect"`
}
