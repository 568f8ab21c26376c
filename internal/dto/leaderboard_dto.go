package dto

import "github.com/noah-isme/willow-go-api/internal/repository"

// LeaderboardResponse ranks students by XP.
type LeaderboardResponse struct {
	Entries []StudentResponse `json:"entries"`
}

// GuildLeaderboardEntry is one guild row ranked by summed member XP.
type GuildLeaderboardEntry struct {
	GuildID   uint   `json:"guild_id"`
	GuildName string `json:"guild_name"`
	ClassName string `json:"class_name,omitempty"`
	TotalXP   int64  `json:"total_xp"`
}

// GuildLeaderboardResponse ranks guilds by summed member XP.
type GuildLeaderboardResponse struct {
	Entries []GuildLeaderboardEntry `json:"entries"`
}

// NewGuildLeaderboardResponse converts repository totals into a DTO.
func NewGuildLeaderboardResponse(totals []repository.GuildXPTotal) GuildLeaderboardResponse {
	entries := make([]GuildLeaderboardEntry, 0, len(totals))
	for _, total := range totals {
		entries = append(entries, GuildLeaderboardEntry{
			GuildID:   total.GuildID,
			GuildName: total.GuildName,
			ClassName: total.ClassName,
			TotalXP:   total.TotalXP,
		})
	}

	return GuildLeaderboardResponse{Entries: entries}
}
