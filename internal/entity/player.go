package entity

// Player is one of the two humans sharing the screen. The value is the icon the view draws.
type Player string

const (
	PlayerA Player = "circle"
	PlayerB Player = "cross"
)

// PlayerForTurn - odd turns belong to PlayerA, even turns to PlayerB.
func PlayerForTurn(turn int) Player {
	if turn%2 == 0 {
		return PlayerB
	}
	return PlayerA
}

// Label - the name shown on the winner banner.
func (that Player) Label() string {
	switch that {
	case PlayerA:
		return "Player 1"
	case PlayerB:
		return "Player 2"
	default:
		return ""
	}
}

func (that Player) IsValid() bool {
	return that == PlayerA || that == PlayerB
}
