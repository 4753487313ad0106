package core

// Transactor is an open transaction. Rollback after Commit is a no-op.
type Transactor interface {
	Commit() error
	Rollback() error
}

// TxOptions mirrors the subset of sql.TxOptions the services rely on.
type TxOptions struct {
	ReadOnly bool
	// Snapshot requests repeatable-read (or stronger) isolation.
	Snapshot bool
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
