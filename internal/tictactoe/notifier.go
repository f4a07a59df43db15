package tictactoe

import "github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"

const (
	EventMove  = "move"
	EventWin   = "win"
	EventDraw  = "draw"
	EventReset = "reset"
)

// Event is what the engine tells its view after an accepted move or a reset.
type Event struct {
	Kind   string             `json:"kind"`
	Result *entity.MoveResult `json:"result,omitempty"`
	State  entity.State       `json:"state"`
}

// Notifier receives engine events. Implementations must not call back into the engine.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(event Event)

func (that NotifierFunc) Notify(event Event) {
	that(event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Notifiers - fans an event out to every non-nil notifier in order.
func Notifiers(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(event Event) {
		for _, notifier := range notifiers {
			if notifier != nil {
				notifier.Notify(event)
			}
		}
	})
}
