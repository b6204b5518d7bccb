package content

import (
	"fmt"
	"os"
)

// Swap validates a candidate content database against the live store and, on
// success, replaces the live database file with it, reopens the store, and
// rebuilds the registry. A rejected candidate leaves the live store open and
// untouched; failures past the file swap itself are fatal to the process.
//
// The stability check is the gate that keeps user progress resolvable: a
// candidate that drops any live ukey is rejected outright.
func Swap(live *Store, reg *Registry, candidatePath string) (*Store, error) {
	cand, err := Open(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("opening candidate content: %w", err)
	}

	oldIdents, err := live.AllIdentities()
	if err != nil {
		cand.Close()
		return nil, fmt.Errorf("reading live identities: %w", err)
	}
	newIdents, err := cand.AllIdentities()
	if err != nil {
		cand.Close()
		return nil, fmt.Errorf("reading candidate identities: %w", err)
	}
	if err := CheckStability(oldIdents, newIdents); err != nil {
		cand.Close()
		return nil, err
	}

	// Checkpoint so the candidate's main file is self-contained, then drop
	// both connections before the file swap.
	if _, err := cand.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		cand.Close()
		return nil, fmt.Errorf("checkpointing candidate: %w", err)
	}
	if err := cand.Close(); err != nil {
		return nil, fmt.Errorf("closing candidate content: %w", err)
	}

	livePath := live.Path
	if err := live.Close(); err != nil {
		return nil, fmt.Errorf("closing live content: %w", err)
	}
	for _, sidecar := range []string{livePath + "-wal", livePath + "-shm"} {
		// Stale WAL sidecars would shadow the swapped-in file.
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing %s: %w", sidecar, err)
		}
	}
	if err := os.Rename(candidatePath, livePath); err != nil {
		return nil, fmt.Errorf("swapping content file: %w", err)
	}

	next, err := Open(livePath)
	if err != nil {
		return nil, fmt.Errorf("reopening content after swap: %w", err)
	}
	if err := reg.Rebuild(next); err != nil {
		next.Close()
		return nil, err
	}
	return next, nil
}
