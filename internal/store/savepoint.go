package store

import "fmt"

// Savepoint nests a mutation inside a host savepoint when one can be
// started. When the host is already mid-statement (a vtab update callback,
// for example) SAVEPOINT fails; the mutation then rides on the host's
// enclosing implicit transaction and Release/Rollback become no-ops.
type Savepoint struct {
	db     *DB
	name   string
	active bool
}

// Savepoint opens a named savepoint if the host allows one right now.
func (d *DB) Savepoint(name string) *Savepoint {
	sp := &Savepoint{db: d, name: name}
	if err := d.Exec("SAVEPOINT " + name); err == nil {
		sp.active = true
	}
	return sp
}

// Active reports whether a savepoint was actually started.
func (sp *Savepoint) Active() bool {
	return sp.active
}

// Release commits the savepoint.
func (sp *Savepoint) Release() error {
	if !sp.active {
		return nil
	}
	sp.active = false
	if err := sp.db.Exec("RELEASE " + sp.name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", sp.name, err)
	}
	return nil
}

// Rollback undoes everything since the savepoint was opened, then releases
// it so the transaction stack is left balanced.
func (sp *Savepoint) Rollback() error {
	if !sp.active {
		return nil
	}
	sp.active = false
	if err := sp.db.Exec("ROLLBACK TO " + sp.name); err != nil {
		return fmt.Errorf("failed to roll back savepoint %s: %w", sp.name, err)
	}
	return sp.db.Exec("RELEASE " + sp.name)
}
