package model

// Quadrant is a cell of the Eisenhower matrix.
type Quadrant string

const (
	DoFirst   Quadrant = "do_first"
	Schedule  Quadrant = "schedule"
	Delegate  Quadrant = "delegate"
	Eliminate Quadrant = "eliminate"
)

// Quadrants lists every quadrant in report order.
var Quadrants = []Quadrant{DoFirst, Schedule, Delegate, Eliminate}

// Title returns the report heading of the quadrant.
func (q Quadrant) Title() string {
	switch q {
	case DoFirst:
		return "🔥 DO FIRST (Urgent & Important)"
	case Schedule:
		return "📅 SCHEDULE (Important, Not Urgent)"
	case Delegate:
		return "👥 DELEGATE (Urgent, Not Important)"
	case Eliminate:
		return "⚠️ ELIMINATE/MINIMIZE (Not Urgent, Not Important)"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool {
	switch q {
	case DoFirst, Schedule, Delegate, Eliminate:
		return true
	}
	return false
}
