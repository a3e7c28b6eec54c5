package netsync

import (
	"sync"
	"time"

	"pixelminer/shared/protocol"
)

// Sender is the slice of the transport the sync state needs.
type Sender interface {
	Send(t string, v interface{}) error
}

// Listener receives reconciliation callbacks. The rest of the game
// (rendering, physics, UI) sits behind this interface: it reads snapshots
// and reacts to spawn/remove/update events, and never touches the sync
// state directly.
type Listener interface {
	RemotePlayerSpawned(p protocol.PlayerState)
	RemotePlayerRemoved(id int64)
	WorldBlockUpdated(x, y int, b *protocol.Block)
	WorldLoaded(blocks protocol.WorldBlocks, hasRocket bool, rocket protocol.Vec2)
	RocketUpdated(pos protocol.Vec2)
	Status(text string)
}

// Generator produces a fallback world when the download from the room times
// out. Terrain generation itself lives with the game, not here.
type Generator func(planet string) protocol.WorldBlocks

// Options tunes client-side recovery behavior.
type Options struct {
	RetryDelay         time.Duration // wait before re-requesting world data
	FallbackDelay      time.Duration // wait after the retry before generating locally
	RowsPerChunk       int           // upload chunk size
	LaunchConfirmDelay time.Duration // delay before the duplicate rocketLaunched send
}

func (o *Options) fill() {
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.FallbackDelay <= 0 {
		o.FallbackDelay = 5 * time.Second
	}
	if o.RowsPerChunk <= 0 {
		o.RowsPerChunk = 100
	}
	if o.LaunchConfirmDelay <= 0 {
		o.LaunchConfirmDelay = 500 * time.Millisecond
	}
}

type transitionKey struct {
	playerID int64
	kind     string
}

// State is the client-side sync state: the local mirror of the room plus the
// remote-player visibility machine. Everything the rest of the game needs
// about the session lives in this one struct.
type State struct {
	mu       sync.Mutex
	net      Sender
	listener Listener
	generate Generator
	opts     Options

	playerID    int64
	gameCode    string
	hosting     bool
	localPlanet string

	world        protocol.WorldBlocks
	worldReady   bool
	rocketPlaced bool
	rocketPos    protocol.Vec2

	remotes map[int64]*RemotePlayer

	// Last applied value per (player, event kind). Transition events arrive
	// more than once by design; applying the same value twice is a no-op.
	lastTransition map[transitionKey]string
}

func NewState(net Sender, listener Listener, generate Generator, opts Options) *State {
	opts.fill()
	return &State{
		net:            net,
		listener:       listener,
		generate:       generate,
		opts:           opts,
		localPlanet:    "earth",
		world:          make(protocol.WorldBlocks),
		remotes:        make(map[int64]*RemotePlayer),
		lastTransition: make(map[transitionKey]string),
	}
}

// Run consumes inbound envelopes until the channel closes.
func (s *State) Run(in <-chan Msg) {
	for env := range in {
		s.Handle(env)
	}
}

// PlayerID returns the id the server assigned to this connection.
func (s *State) PlayerID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// GameCode returns the joined room's code, empty until hosted/joined.
func (s *State) GameCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameCode
}

// Hosting reports whether this client created the current room.
func (s *State) Hosting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hosting
}

// WorldReady reports whether a world snapshot has been applied.
func (s *State) WorldReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.worldReady
}

// LocalPlanet returns the planet the local player is viewing.
func (s *State) LocalPlanet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localPlanet
}

// BlockAt reports the local world cell and whether it is known.
func (s *State) BlockAt(x, y int) (*protocol.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols, ok := s.world[y]
	if !ok {
		return nil, false
	}
	b, ok := cols[x]
	return b, ok
}

// ---------- outbound intents ----------

// HostGame asks the server to create a room.
func (s *State) HostGame(name string, maxPlayers int) error {
	return s.net.Send("hostGame", protocol.HostGame{GameName: name, MaxPlayers: maxPlayers})
}

// JoinGame asks the server to join an existing room by code.
func (s *State) JoinGame(code string) error {
	return s.net.Send("joinGame", protocol.JoinGame{GameCode: code})
}

// SendMove reports the local player's kinematic state, fire-and-forget.
func (s *State) SendMove(m protocol.PlayerMove) error {
	if m.Timestamp == 0 {
		m.Timestamp = time.Now().UnixMilli()
	}
	if m.CurrentPlanet == "" {
		m.CurrentPlanet = s.LocalPlanet()
	}
	return s.net.Send("playerMove", m)
}

// MineBlock reports a mined cell. The local grid converges on the server's
// worldUpdated echo, which fans out to the sender as well.
func (s *State) MineBlock(x, y int) error {
	return s.net.Send("blockMined", protocol.BlockMined{X: x, Y: y})
}

func (s *State) SendToolChanged(tool string) error {
	return s.net.Send("toolChanged", protocol.ToolChanged{Tool: tool})
}

func (s *State) SendMiningStart(x, y int, tool string) error {
	return s.net.Send("miningStart", protocol.MiningStart{X: x, Y: y, Tool: tool})
}

func (s *State) SendMiningStop() error {
	return s.net.Send("miningStop", protocol.MiningStop{})
}

func (s *State) SendLaserActivated() error {
	return s.net.Send("laserActivated", protocol.LaserActivated{})
}

func (s *State) SendLaserDeactivated() error {
	return s.net.Send("laserDeactivated", protocol.LaserDeactivated{})
}

func (s *State) SendLaserUpdate(angle float64) error {
	return s.net.Send("laserUpdate", protocol.LaserUpdate{Angle: angle})
}

func (s *State) SendJetpackActivated() error {
	return s.net.Send("jetpackActivated", protocol.JetpackActivated{})
}

func (s *State) SendJetpackDeactivated() error {
	return s.net.Send("jetpackDeactivated", protocol.JetpackDeactivated{})
}

func (s *State) SendToolRotation(angle float64, direction int) error {
	return s.net.Send("toolRotation", protocol.ToolRotation{Angle: angle, Direction: direction})
}

func (s *State) SendRocketPurchased(x, y float64) error {
	return s.net.Send("rocketPurchased", protocol.RocketPurchased{RocketX: x, RocketY: y})
}

func (s *State) SendRocketPosition(x, y float64) error {
	return s.net.Send("rocketPosition", protocol.RocketPosition{X: x, Y: y})
}

// RequestPlayersOnPlanet asks for the roster subset on the given planet.
func (s *State) RequestPlayersOnPlanet(planet string) error {
	return s.net.Send("getPlayersOnPlanet", protocol.GetPlayersOnPlanet{Planet: planet})
}

// ChangePlanet switches the local view: every tracked peer on another planet
// is dropped immediately, the server is told, and a fresh roster snapshot
// for the new planet is requested.
func (s *State) ChangePlanet(planet string) error {
	s.mu.Lock()
	s.localPlanet = planet
	for id, rp := range s.remotes {
		if rp.CurrentPlanet != planet {
			s.dropRemoteLocked(id)
		}
	}
	s.mu.Unlock()

	if err := s.net.Send("planetChanged", protocol.PlanetChanged{Planet: planet}); err != nil {
		return err
	}
	return s.RequestPlayersOnPlanet(planet)
}

// LaunchRocket announces the launch and schedules the duplicate confirm
// send for delivery robustness. Receivers apply it idempotently.
func (s *State) LaunchRocket(targetPlanet string) error {
	s.mu.Lock()
	current := s.localPlanet
	s.mu.Unlock()

	m := protocol.RocketLaunched{
		TargetPlanet:  targetPlanet,
		CurrentPlanet: current,
		Timestamp:     time.Now().UnixMilli(),
		RocketAction:  "launch",
	}
	if err := s.net.Send("rocketLaunched", m); err != nil {
		return err
	}
	confirm := m
	confirm.RocketAction = "confirm"
	time.AfterFunc(s.opts.LaunchConfirmDelay, func() {
		_ = s.net.Send("rocketLaunched", confirm)
	})
	return s.ChangePlanet(targetPlanet)
}
