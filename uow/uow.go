// Package uow provides the all-or-nothing unit-of-work boundary for the
// arbitrage sandbox. Each stateful collaborator exposes snapshot/restore and
// a Scope brackets a sequence of operations so that any failure discards
// every state change made inside it.
package uow

// Snapshotter captures and restores the full state of one collaborator.
type Snapshotter interface {
	Snapshot() any
	Restore(snapshot any)
}

// Committer is optionally implemented by collaborators that stage side
// effects which must only become visible once the unit of work settles.
type Committer interface {
	Commit()
}

// Scope aggregates the collaborators participating in a unit of work.
type Scope struct {
	parts []Snapshotter
}

// NewScope creates a scope over the given collaborators.
func NewScope(parts ...Snapshotter) *Scope {
	return &Scope{parts: parts}
}

// Add registers another collaborator with the scope.
func (s *Scope) Add(part Snapshotter) {
	s.parts = append(s.parts, part)
}

// Run executes fn between a snapshot and an implicit commit. If fn returns an
// error every collaborator is rolled back to its pre-run state and the error
// is returned unchanged; on success the snapshots are simply dropped.
func (s *Scope) Run(fn func() error) error {
	snapshots := make([]any, len(s.parts))
	for i, part := range s.parts {
		snapshots[i] = part.Snapshot()
	}

	if err := fn(); err != nil {
		// Restore in reverse acquisition order.
		for i := len(s.parts) - 1; i >= 0; i-- {
			s.parts[i].Restore(snapshots[i])
		}
		return err
	}

	for _, part := range s.parts {
		if committer, ok := part.(Committer); ok {
			committer.Commit()
		}
	}
	return nil
}
