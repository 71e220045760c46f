package model

// Room is a physical instance of a game.  A private booking occupies the
// whole room; public bookings share it up to MaxPlayers.
//
// Fields:
//  ID         – rooms.id
//  OrgID      – rooms.org_id
//  GameID     – rooms.game_id
//  Name       – rooms.name
//  MaxPlayers – room-level player cap, may be lower than the game's cap.
//  Enabled    – disabled rooms never appear in availability.
//  Version    – optimistic locking token, bumped by every accepted hold.
type Room struct {
    ID         string `db:"id" json:"id"`
    OrgID      string `db:"org_id" json:"org_id"`
    GameID     string `db:"game_id" json:"game_id"`
    Name       string `db:"name" json:"name"`
    MaxPlayers int    `db:"max_players" json:"max_players"`
    Enabled    bool   `db:"enabled" json:"enabled"`
    Version    uint64 `db:"version" json:"-"`
}
