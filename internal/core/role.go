package core

// Role decides whether this peer simulates the match or only mirrors it.
type Role int

const (
	// RoleSpectator mirrors state received from the authority.
	RoleSpectator Role = iota
	// RoleAuthority runs physics and is the sole source of ball and score truth.
	RoleAuthority
)

// RoleFor maps the matchmaking player-slot flag onto a role.
func RoleFor(isPlayer1 bool) Role {
	if isPlayer1 {
		return RoleAuthority
	}
	return RoleSpectator
}

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleSpectator:
		return "spectator"
	default:
		return "unknown"
	}
}

// Side names one half of the table from the local peer's point of view.
// In doubles each half also seats a partner.
type Side int

const (
	SideNone Side = iota
	// SidePlayer is the local player's half (positive Z).
	SidePlayer
	// SideOpponent is the remote player's half (negative Z).
	SideOpponent
	// SidePlayerPartner is the second paddle on the player half.
	SidePlayerPartner
	// SideOpponentPartner is the second paddle on the opponent half.
	SideOpponentPartner
)

// Team returns the half a seat plays on.
func (s Side) Team() Side {
	switch s {
	case SidePlayer, SidePlayerPartner:
		return SidePlayer
	case SideOpponent, SideOpponentPartner:
		return SideOpponent
	default:
		return SideNone
	}
}

// Other returns the opposing half.
func (s Side) Other() Side {
	switch s.Team() {
	case SidePlayer:
		return SideOpponent
	case SideOpponent:
		return SidePlayer
	default:
		return SideNone
	}
}

// Sign returns +1 for the player half and -1 for the opponent half.
func (s Side) Sign() float64 {
	switch s.Team() {
	case SidePlayer:
		return 1
	case SideOpponent:
		return -1
	default:
		return 0
	}
}

// SideOfZ returns the half of the table a Z coordinate lies over.
func SideOfZ(z float64) Side {
	if z >= 0 {
		return SidePlayer
	}
	return SideOpponent
}

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	case SidePlayerPartner:
		return "player partner"
	case SideOpponentPartner:
		return "opponent partner"
	default:
		return "none"
	}
}
