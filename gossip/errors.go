package gossip

import "errors"

var (
	ErrGameOver     = errors.New("game is over")
	ErrUnknownEvent = errors.New("unknown event")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
