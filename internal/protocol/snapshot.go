package protocol

// SNAPSHOT (server -> client), one per tick, filtered through the
// receiving player's team fog.
type SnapshotMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	NowMs           int64  `json:"now_ms"`

	Player    PlayerObs    `json:"player"`
	Entities  []EntityObs  `json:"entities"`
	Events    []EventObs   `json:"events"`
	Fog       FogObs       `json:"fog"`
	Objective ObjectiveObs `json:"objective"`
}

type PlayerObs struct {
	ID              int            `json:"id"`
	Team            int            `json:"team"`
	Resources       int            `json:"resources"`
	Supply          int            `json:"supply"`
	SupplyCap       int            `json:"supply_cap"`
	WorkerSupply    int            `json:"worker_supply"`
	WorkerSupplyCap int            `json:"worker_supply_cap"`
	Upgrades        map[string]int `json:"upgrades,omitempty"`
	KillScore       int            `json:"kill_score"`
}

type EntityObs struct {
	ID         uint64  `json:"id"`
	Type       string  `json:"type,omitempty"`
	Class      string  `json:"class"`
	Owner      int     `json:"owner"`
	Pos        [2]int  `json:"pos"`
	Size       [2]int  `json:"size"`
	Facing     float64 `json:"facing,omitempty"`
	HP         int     `json:"hp,omitempty"`
	MaxHP      int     `json:"max_hp,omitempty"`
	State      string  `json:"state,omitempty"`
	Progress   float64 `json:"progress,omitempty"`
	Siege      string  `json:"siege,omitempty"`
	Garrisoned bool    `json:"garrisoned,omitempty"`
	Occupants  int     `json:"occupants,omitempty"`
	ExpiresMs  int64   `json:"expires_ms,omitempty"`
	Silhouette bool    `json:"silhouette,omitempty"`
}

type EventObs struct {
	Kind     string  `json:"kind"`
	Source   uint64  `json:"source,omitempty"`
	Target   uint64  `json:"target,omitempty"`
	Pos      [2]int  `json:"pos"`
	To       *[2]int `json:"to,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	Text     string  `json:"text,omitempty"`
}

type FogObs struct {
	Cols     int    `json:"cols"`
	Rows     int    `json:"rows"`
	Encoding string `json:"encoding"` // "RLE"
	Data     string `json:"data"`
}

type ObjectiveObs struct {
	ControllerTeam int  `json:"controller_team,omitempty"`
	Contested      bool `json:"contested,omitempty"`
}
