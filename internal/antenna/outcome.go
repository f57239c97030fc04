package antenna

import "errors"

// Outcome is the result of resolving one antenna id.
type Outcome int

// Resolution outcomes. Only AlreadyPresent and ResolvedNew make the antenna
// usable by dependent records.
const (
	AlreadyPresent Outcome = iota
	ResolvedNew
	NoCoordinates
	Unavailable
	Irreconcilable
	Failed
)

// ErrIrreconcilable is returned when an id collision could not be repaired
// by updating the stored coordinates.
var ErrIrreconcilable = errors.New("irreconcilable antenna conflict")

func (o Outcome) String() string {
	switch o {
	case AlreadyPresent:
		return "already_present"
	case ResolvedNew:
		return "resolved_new"
	case NoCoordinates:
		return "no_coordinates"
	case Unavailable:
		return "unavailable"
	case Irreconcilable:
		return "irreconcilable"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolved reports whether the antenna is stored locally.
func (o Outcome) Resolved() bool {
	return o == AlreadyPresent || o == ResolvedNew
}
