package protocol

// Catalogue models the full wire message set for schema generation. It is
// shared with cmd/schema so the browser client and validation tooling get a
// machine-readable document of every payload shape.
type Catalogue struct {
	// client -> server
	HostGame           HostGame           `json:"hostGame" jsonschema:"description=Create a room and become its host"`
	JoinGame           JoinGame           `json:"joinGame" jsonschema:"description=Join an existing room by code"`
	PlayerMove         PlayerMove         `json:"playerMove" jsonschema:"description=Fire-and-forget self-reported kinematic state"`
	BlockMined         BlockMined         `json:"blockMined" jsonschema:"description=Mark a terrain cell as mined"`
	ToolChanged        ToolChanged        `json:"toolChanged"`
	MiningStart        MiningStart        `json:"miningStart"`
	MiningStop         MiningStop         `json:"miningStop"`
	LaserActivated     LaserActivated     `json:"laserActivated"`
	LaserDeactivated   LaserDeactivated   `json:"laserDeactivated"`
	LaserUpdate        LaserUpdate        `json:"laserUpdate"`
	JetpackActivated   JetpackActivated   `json:"jetpackActivated"`
	JetpackDeactivated JetpackDeactivated `json:"jetpackDeactivated"`
	ToolRotation       ToolRotation       `json:"toolRotation"`
	PlanetChanged      PlanetChanged      `json:"planetChanged"`
	RocketPurchased    RocketPurchased    `json:"rocketPurchased"`
	RocketPosition     RocketPosition     `json:"rocketPosition"`
	RocketLaunched     RocketLaunched     `json:"rocketLaunched" jsonschema:"description=Sent twice by the originator for delivery robustness"`
	GetPlayersOnPlanet GetPlayersOnPlanet `json:"getPlayersOnPlanet"`
	StartWorldUpload   StartWorldUpload   `json:"startWorldUpload"`
	WorldChunk         WorldChunk         `json:"worldChunk"`
	FinishWorldUpload  FinishWorldUpload  `json:"finishWorldUpload"`
	RequestWorldData   RequestWorldData   `json:"requestWorldData"`

	// server -> client
	GameHosted               GameHosted               `json:"gameHosted"`
	JoinResponse             JoinResponse             `json:"joinResponse"`
	GameState                GameState                `json:"gameState"`
	NewPlayer                NewPlayer                `json:"newPlayer"`
	PlayerMoved              PlayerMoved              `json:"playerMoved"`
	WorldUpdated             WorldUpdated             `json:"worldUpdated"`
	PlayerToolChanged        PlayerToolChanged        `json:"playerToolChanged"`
	PlayerMiningStart        PlayerMiningStart        `json:"playerMiningStart"`
	PlayerMiningStop         PlayerMiningStop         `json:"playerMiningStop"`
	PlayerLaserActivated     PlayerLaserActivated     `json:"playerLaserActivated"`
	PlayerLaserDeactivated   PlayerLaserDeactivated   `json:"playerLaserDeactivated"`
	PlayerLaserUpdate        PlayerLaserUpdate        `json:"playerLaserUpdate"`
	PlayerJetpackActivated   PlayerJetpackActivated   `json:"playerJetpackActivated"`
	PlayerJetpackDeactivated PlayerJetpackDeactivated `json:"playerJetpackDeactivated"`
	PlayerToolRotation       PlayerToolRotation       `json:"playerToolRotation"`
	PlayerPlanetChanged      PlayerPlanetChanged      `json:"playerPlanetChanged"`
	RocketPurchasedEvent     RocketPurchasedEvent     `json:"rocketPurchasedEvent"`
	RocketPositionUpdate     RocketPositionUpdate     `json:"rocketPositionUpdate"`
	RocketLaunchedEvent      RocketLaunchedEvent      `json:"rocketLaunchedEvent"`
	PlayersOnPlanet          PlayersOnPlanet          `json:"playersOnPlanet"`
	PlayerDisconnected       PlayerDisconnected       `json:"playerDisconnected"`
	WorldDataResponse        WorldDataResponse        `json:"worldDataResponse"`
	ErrorMsg                 ErrorMsg                 `json:"error"`
}
