package protocol

import "encoding/json"

// Envelope. Every websocket frame in both directions is one of these.
type MsgEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// PlayerState is the wire snapshot of one player. The server relays these
// values as reported by the owning client; it does not validate or clamp
// them.
type PlayerState struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name,omitempty"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Direction     int     `json:"direction"`
	VelocityX     float64 `json:"velocityX"`
	VelocityY     float64 `json:"velocityY"`
	OnGround      bool    `json:"onGround"`
	Health        int     `json:"health"`
	Depth         float64 `json:"depth"`
	CurrentTool   string  `json:"currentTool"`
	ToolType      string  `json:"toolType,omitempty"`
	CurrentPlanet string  `json:"currentPlanet"`
}

// ================= C -> S =================

type HostGame struct {
	GameName   string `json:"gameName"`
	MaxPlayers int    `json:"maxPlayers"`
}

type JoinGame struct {
	GameCode string `json:"gameCode"`
}

type PlayerMove struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Direction     int     `json:"direction"`
	VelocityX     float64 `json:"velocityX"`
	VelocityY     float64 `json:"velocityY"`
	OnGround      bool    `json:"onGround"`
	Health        int     `json:"health"`
	Depth         float64 `json:"depth"`
	CurrentPlanet string  `json:"currentPlanet"`
	CurrentTool   string  `json:"currentTool"`
	ToolType      string  `json:"toolType,omitempty"`
	Timestamp     int64   `json:"timestamp"`
	UpdateType    string  `json:"updateType,omitempty"`
}

type BlockMined struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ToolChanged struct {
	Tool string `json:"tool"`
}

type MiningStart struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Tool string `json:"tool"`
}

type MiningStop struct{}

type LaserActivated struct{}
type LaserDeactivated struct{}
type LaserUpdate struct {
	Angle float64 `json:"angle"`
}

type JetpackActivated struct{}
type JetpackDeactivated struct{}

type ToolRotation struct {
	Angle     float64 `json:"angle"`
	Direction int     `json:"direction"`
}

type PlanetChanged struct {
	Planet string `json:"planet"`
}

type RocketPurchased struct {
	RocketX float64 `json:"rocketX"`
	RocketY float64 `json:"rocketY"`
}

type RocketPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RocketLaunched is sent twice by the originating client (a confirm re-send
// ~500ms after the first) for delivery robustness; receivers must apply it
// idempotently.
type RocketLaunched struct {
	TargetPlanet  string `json:"targetPlanet"`
	CurrentPlanet string `json:"currentPlanet"`
	Timestamp     int64  `json:"timestamp"`
	RocketAction  string `json:"rocketAction,omitempty"`
}

type GetPlayersOnPlanet struct {
	Planet string `json:"planet"`
}

// World transfer, host -> room. StartWorldUpload and FinishWorldUpload are
// informational; only the rocket info on start is recorded durably.
type StartWorldUpload struct {
	TotalRows      int    `json:"totalRows"`
	BlockCount     int    `json:"blockCount"`
	PlanetType     string `json:"planetType"`
	HasRocket      bool   `json:"hasRocket"`
	RocketPosition *Vec2  `json:"rocketPosition,omitempty"`
}

type WorldChunk struct {
	ChunkIndex  int         `json:"chunkIndex"`
	TotalChunks int         `json:"totalChunks"`
	ChunkData   WorldBlocks `json:"chunkData"`
	RowCount    int         `json:"rowCount"`
}

type FinishWorldUpload struct {
	TotalSent  int `json:"totalSent"`
	BlockCount int `json:"blockCount"`
}

type RequestWorldData struct {
	Planet string `json:"planet"`
}

// ================= S -> C =================

type GameHosted struct {
	GameCode string `json:"gameCode"`
	Success  bool   `json:"success"`
}

type JoinResponse struct {
	Success  bool   `json:"success"`
	GameCode string `json:"gameCode,omitempty"`
	Message  string `json:"message,omitempty"`
}

// GameState is the full room snapshot sent to a connection right after it
// hosts or joins.
type GameState struct {
	PlayerID       int64         `json:"playerId"`
	GameCode       string        `json:"gameCode"`
	Players        []PlayerState `json:"players"`
	WorldBlocks    WorldBlocks   `json:"worldBlocks,omitempty"`
	HasRocket      bool          `json:"hasRocket,omitempty"`
	RocketPosition *Vec2         `json:"rocketPosition,omitempty"`
}

type NewPlayer struct {
	Player PlayerState `json:"player"`
}

type PlayerMoved struct {
	ID int64 `json:"id"`
	PlayerMove
}

// WorldUpdated fans out to every connection in the room, sender included,
// so all clients converge on the same cell state.
type WorldUpdated struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Block *Block `json:"block"`
}

type PlayerToolChanged struct {
	ID   int64  `json:"id"`
	Tool string `json:"tool"`
}

type PlayerMiningStart struct {
	ID   int64  `json:"id"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Tool string `json:"tool"`
}

type PlayerMiningStop struct {
	ID int64 `json:"id"`
}

type PlayerLaserActivated struct {
	ID int64 `json:"id"`
}
type PlayerLaserDeactivated struct {
	ID int64 `json:"id"`
}
type PlayerLaserUpdate struct {
	ID    int64   `json:"id"`
	Angle float64 `json:"angle"`
}

type PlayerJetpackActivated struct {
	ID int64 `json:"id"`
}
type PlayerJetpackDeactivated struct {
	ID int64 `json:"id"`
}

type PlayerToolRotation struct {
	ID        int64   `json:"id"`
	Angle     float64 `json:"angle"`
	Direction int     `json:"direction"`
}

type PlayerPlanetChanged struct {
	PlayerID int64  `json:"playerId"`
	Planet   string `json:"planet"`
}

type RocketPurchasedEvent struct {
	PlayerID int64   `json:"playerId"`
	RocketX  float64 `json:"rocketX"`
	RocketY  float64 `json:"rocketY"`
}

type RocketPositionUpdate struct {
	PlayerID int64   `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type RocketLaunchedEvent struct {
	PlayerID int64 `json:"playerId"`
	RocketLaunched
}

type PlayersOnPlanet struct {
	Planet  string        `json:"planet"`
	Players []PlayerState `json:"players"`
}

type PlayerDisconnected struct {
	ID int64 `json:"id"`
}

type WorldDataResponse struct {
	Success        bool        `json:"success"`
	WorldBlocks    WorldBlocks `json:"worldBlocks,omitempty"`
	HasRocket      bool        `json:"hasRocket,omitempty"`
	RocketPosition *Vec2       `json:"rocketPosition,omitempty"`
	Message        string      `json:"message,omitempty"`
}

type ErrorMsg struct {
	Message string `json:"message"`
}
