package component

// EventKind labels an entry of the task event log.
type EventKind string

const (
	Created EventKind = "created"
	Deleted EventKind = "deleted"
)

func (k EventKind) Valid() bool {
	return k == Created || k == Deleted
}
