/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package matchmaking

// OpponentInfo is the public view of the other queued player sent in
// match_found (spec.md §6).
type OpponentInfo struct {
	UserID      string `json:"id"`
	DisplayName string `json:"display_name"`
	XP          int    `json:"xp"`
	Rank        string `json:"rank"`
}

// MatchFoundMsg tells a queued connection it has been paired, ahead of the
// redirect that follows after RedirectDelay (spec.md §4.5).
type MatchFoundMsg struct {
	Type      string       `json:"type"`
	LobbyCode string       `json:"lobby_code"`
	Opponent  OpponentInfo `json:"opponent"`
}

// RedirectMsg instructs the client to open the lobby's WebSocket endpoint
// (spec.md §4.5).
type RedirectMsg struct {
	Type      string `json:"type"`
	LobbyCode string `json:"lobby_code"`
}
