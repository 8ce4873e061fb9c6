package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	// Seat asks for a player slot; 0 takes the first free one.
	Seat int `json:"seat,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	MatchID         string         `json:"match_id"`
	PlayerID        int            `json:"player_id"`
	Team            int            `json:"team"`
	MatchParams     MatchParams    `json:"match_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type MatchParams struct {
	TickRateHz  int     `json:"tick_rate_hz"`
	MapWidth    float64 `json:"map_width"`
	MapHeight   float64 `json:"map_height"`
	Tiles       int     `json:"tiles"`
	LocalGrid   int     `json:"local_grid"`
	FogCellSize float64 `json:"fog_cell_size"`
	Seed        int64   `json:"seed"`
}

type CatalogDigests struct {
	EntitiesDigest string `json:"entities_digest"`
	UpgradesDigest string `json:"upgrades_digest"`
}

// CMD (client -> server)
type CmdMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Kind            string       `json:"kind"`
	IDs             []uint64     `json:"ids,omitempty"`
	X               float64      `json:"x"`
	Y               float64      `json:"y"`
	Target          uint64       `json:"target,omitempty"`
	UnitType        string       `json:"unit_type,omitempty"`
	GridX           int          `json:"grid_x"`
	GridY           int          `json:"grid_y"`
	Waypoints       [][2]float64 `json:"waypoints,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
