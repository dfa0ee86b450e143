package odds

import "errors"

// Sentinel kinds for wheel errors.
var (
	ErrEmptyPrizeTable   = errors.New("empty prize table")
	ErrInvalidPrizeTable = errors.New("prize table needs a zero-amount entry and a winning entry")
	ErrInvalidWinRate    = errors.New("invalid win rate")
)
