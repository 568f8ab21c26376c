package gamification

// BadgeTier binds an XP threshold to the badge it unlocks.
type BadgeTier struct {
	Threshold int
	Name      string
}

// BadgeTiers lists the level badges in ascending threshold order.
var BadgeTiers = []BadgeTier{
	{100, "Explorador Iniciante"},
	{200, "Explorador Bronze"},
	{300, "Desbravador Prata"},
	{400, "Garimpeiro Ouro"},
	{500, "Alma de Platina"},
	{600, "Arqueólogo de Jaspe"},
	{700, "Conquistador de Safira"},
	{800, "Conquistador de Esmeralda"},
	{900, "Conquistador de Diamante"},
	{1000, "Mestre das Gemas"},
}

// TierBadges returns every tier badge unlocked at the given XP, in
// ascending threshold order.
func TierBadges(xp int) []string {
	badges := make([]string, 0, len(BadgeTiers))
	for _, tier := range BadgeTiers {
		if xp < tier.Threshold {
			break
		}
		badges = append(badges, tier.Name)
	}
	return badges
}

// MergeBadges unions earned badges into the current set, preserving order
// of first appearance. Badges are never removed here: a student keeps every
// badge even if a later penalty drops their XP below the tier threshold.
func MergeBadges(current, earned []string) []string {
	merged := make([]string, 0, len(current)+len(earned))
	seen := make(map[string]struct{}, len(current)+len(earned))
	for _, set := range [][]string{current, earned} {
		for _, badge := range set {
			if _, ok := seen[badge]; ok {
				continue
			}
			seen[badge] = struct{}{}
			merged = append(merged, badge)
		}
	}
	return merged
}
