package shortener

import "context"

// Repository defines the persistence operations for Link entities.
// Every read only sees active links; deleted rows are invisible.
type Repository interface {
	// Create inserts link and returns the stored row.
	// A code already held by an active link yields a Conflict error.
	Create(ctx context.Context, link Link) (Link, error)

	// CodeExists reports whether an active link holds code.
	CodeExists(ctx context.Context, code string) (bool, error)

	GetByCode(ctx context.Context, code string) (Link, error)
	List(ctx context.Context, order ListOrder) ([]Link, error)

	// RecordClick locks the active row for code, increments its counter and
	// stamps last_clicked, all in one transaction. Concurrent calls for the
	// same code serialize on the row lock.
	RecordClick(ctx context.Context, code string) (Link, error)

	// SoftDelete flags the active link as deleted. NotFound if none is active.
	SoftDelete(ctx context.Context, code string) error
}
