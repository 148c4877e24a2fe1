package types

import "github.com/DoyleJ11/monopoly-client/internal/board"

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Version is the optional ordering stamp on state-affecting messages.
// Set is false when the frame carried no numeric "version" field.
type Version struct {
	N   int64
	Set bool
}

// Inbound is a decoded server -> client message.
type Inbound interface{ isInbound() }

type Players struct {
	List []Player `json:"list"`
}

type PlayerJoined struct {
	Player *Player `json:"player"`
}

type PlayerLeft struct {
	Player *Player `json:"player"`
}

type YourTurn struct {
	CanRoll bool `json:"canRoll"`
}

// LogLine covers the "event", "log" and "serverLog" tags.
type LogLine struct {
	Kind string `json:"-"`
	Text string `json:"text"`
}

type Move struct {
	Version  Version `json:"-"`
	PlayerID string  `json:"playerId"`
	To       *int    `json:"to"`
}

type State struct {
	Version   Version        `json:"-"`
	Positions map[string]int `json:"positions"`
	Turn      string         `json:"turn"`
}

type DrawPrompt struct {
	Deck string `json:"deck"`
}

type Card struct {
	Deck  string `json:"deck"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Unknown carries a frame whose tag this client does not understand.
type Unknown struct {
	Type string
	Raw  []byte
}

func (Players) isInbound()      {}
func (PlayerJoined) isInbound() {}
func (PlayerLeft) isInbound()   {}
func (YourTurn) isInbound()     {}
func (LogLine) isInbound()      {}
func (Move) isInbound()         {}
func (State) isInbound()        {}
func (DrawPrompt) isInbound()   {}
func (Card) isInbound()         {}
func (Unknown) isInbound()      {}

// Outbound is a client -> server message. Type returns the wire tag.
type Outbound interface {
	isOutbound()
	Type() string
}

type Resume struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Room     string `json:"room"`
}

type SubscribeLogs struct {
	Room string `json:"room"`
}

type Who struct {
	Room string `json:"room"`
}

type Sync struct {
	Room string `json:"room"`
}

type Draw struct {
	Deck     board.Deck `json:"deck"`
	Room     string     `json:"room"`
	PlayerID string     `json:"playerId"`
}

type Leave struct {
	PlayerID string `json:"playerId"`
	Room     string `json:"room"`
}

type Ping struct {
	T    int64  `json:"t"`
	Room string `json:"room"`
}

func (Resume) isOutbound()        {}
func (SubscribeLogs) isOutbound() {}
func (Who) isOutbound()           {}
func (Sync) isOutbound()          {}
func (Draw) isOutbound()          {}
func (Leave) isOutbound()         {}
func (Ping) isOutbound()          {}

func (Resume) Type() string        { return "resume" }
func (SubscribeLogs) Type() string { return "subscribeLogs" }
func (Who) Type() string           { return "who" }
func (Sync) Type() string          { return "sync" }
func (Draw) Type() string          { return "draw" }
func (Leave) Type() string         { return "leave" }
func (Ping) Type() string          { return "ping" }
