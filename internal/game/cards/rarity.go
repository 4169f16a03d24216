package cards

import "strings"

// Rarity is the collectible tier printed on a card.
type Rarity string

const (
	Common    Rarity = "Common"
	Uncommon  Rarity = "Uncommon"
	Rare      Rarity = "Rare"
	Epic      Rarity = "Epic"
	Legendary Rarity = "Legendary"
)

// ParseRarity resolves a rarity name case-insensitively.
func ParseRarity(s string) (Rarity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return Common, true
	case "uncommon":
		return Uncommon, true
	case "rare":
		return Rare, true
	case "epic":
		return Epic, true
	case "legendary":
		return Legendary, true
	default:
		return "", false
	}
}

func (r Rarity) String() string {
	return string(r)
}
