package appraisal

import "context"

type ListFilter struct {
	TeacherID string
	Year      int
	Status    string
}

type StoreAPI interface {
	// Insert persists a new appraisal. A duplicate (teacher, year) pair
	// surfaces as a StateConflictError.
	Insert(ctx context.Context, a Appraisal) (Appraisal, error)
	Get(ctx context.Context, id string) (Appraisal, error)
	// SaveTransition writes the appraisal's mutated fields and appends the
	// status-history row in a single transaction.
	SaveTransition(ctx context.Context, a Appraisal, change StatusChange) (Appraisal, error)
	List(ctx context.Context, filter ListFilter) ([]Appraisal, error)
	StatusHistory(ctx context.Context, appraisalID string) ([]StatusChange, error)
}
