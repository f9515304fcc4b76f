package model

// Uncategorized is the need level of any task whose area cannot be resolved.
const Uncategorized = "Uncategorized"

// Level is a resolved importance or urgency value.
type Level string

const (
	LevelUnset  Level = ""
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// IsSet reports whether the level carries a value.
func (l Level) IsSet() bool {
	return l != LevelUnset
}

func (l Level) String() string {
	if l == LevelUnset {
		return "unset"
	}
	return string(l)
}

// Origin records where an importance or urgency value came from.
type Origin string

const (
	OriginUnset    Origin = ""
	OriginExplicit Origin = "explicit"
	OriginAdvisor  Origin = "advisor"
	OriginDueDate  Origin = "due_date"
	OriginKeyword  Origin = "keyword"
	OriginDefault  Origin = "default"
)

// SourceFlags tracks, per axis, whether a value was supplied by the data source or inferred.
type SourceFlags struct {
	Importance Origin `json:"importance"`
	Urgency    Origin `json:"urgency"`
}

// Explicit reports whether both importance and urgency were supplied by the data source.
func (f SourceFlags) Explicit() bool {
	return f.Importance == OriginExplicit && f.Urgency == OriginExplicit
}

// TaskRecord is the canonical form of a task after normalization.
type TaskRecord struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	// Due is the due date exactly as the source supplied it.
	Due        string      `json:"due,omitempty"`
	Importance Level       `json:"importance"`
	Urgency    Level       `json:"urgency"`
	AreaRefs   []string    `json:"area_refs,omitempty"`
	AreaName   string      `json:"area,omitempty"`
	NeedLevel  string      `json:"need_level"`
	Flags      SourceFlags `json:"source_flags"`
}

// AreaRef returns the first area reference, which is the only one used for level resolution.
func (t TaskRecord) AreaRef() string {
	if len(t.AreaRefs) == 0 {
		return ""
	}
	return t.AreaRefs[0]
}

// Resolved reports whether both axes carry a value.
func (t TaskRecord) Resolved() bool {
	return t.Importance.IsSet() && t.Urgency.IsSet()
}

// Area is one entry of the area taxonomy.
type Area struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NeedLevel string `json:"need_level"`
}

