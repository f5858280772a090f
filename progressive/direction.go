package progressive

// Direction is the state of a transformation session
type Direction int

const (
	Concentrating Direction = iota // removing onsets
	Diluting                       // adding onsets
)

func (d Direction) String() string {
	switch d {
	case Concentrating:
		return "concentrating"
	case Diluting:
		return "diluting"
	}
	return "unknown"
}

// Reverse returns the opposite direction
func (d Direction) Reverse() Direction {
	if d == Concentrating {
		return Diluting
	}
	return Concentrating
}

// event drives direction transitions
type event int

const (
	eventAdvance  event = iota // move one onset
	eventBoundary              // reached target or base
)

// transition links a state and event to the next state
type transition struct {
	from  Direction
	event event
	to    Direction
}

// transitions has no terminal state: every boundary flips direction
var transitions = [...]transition{
	{Concentrating, eventAdvance, Concentrating},
	{Diluting, eventAdvance, Diluting},
	{Concentrating, eventBoundary, Diluting},
	{Diluting, eventBoundary, Concentrating},
}

// next resolves the transition table
func (d Direction) next(ev event) Direction {
	for _, t := range transitions {
		if t.from == d && t.event == ev {
			return t.to
		}
	}
	return d
}

// initialDirection infers the outbound direction from base and target onset counts
func initialDirection(baseOnsets, target int) Direction {
	if target < baseOnsets {
		return Concentrating
	}
	return Diluting
}
