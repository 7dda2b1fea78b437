package studio

import "github.com/trombonestudio/automation"

type (
	// Broker carries events that originate outside the model goroutine to
	// it: capture ticks fired by the recorder's scheduler and the results of
	// asynchronous file loads. The owner of the Model receives from ToModel
	// and passes every message to Model.ProcessMsg, which serializes these
	// events with UI events on one goroutine.
	Broker struct {
		ToModel chan MsgToModel
	}

	// MsgToModel is a message sent to the model. Data holds one of the
	// unexported event types below.
	MsgToModel struct {
		Data any
	}

	captureTick struct{}

	libraryLoaded struct {
		lib  automation.Library
		path string
		err  error
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel: make(chan MsgToModel, 1024),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}
