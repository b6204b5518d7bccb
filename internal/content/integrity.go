package content

import (
	"fmt"
	"sort"

	"hifz/engine/internal/errs"
)

// ValidateReference guards a user-store write that references a node: it
// resolves the ukey against the current version or fails with ErrNotFound.
func ValidateReference(reg *Registry, ukey string) (int64, error) {
	return reg.Resolve(ukey)
}

// CheckStability enforces the ukey-stability invariant across a content
// swap: every ukey of the live version must still exist in the candidate
// version. A violation lists the ukeys that would disappear, sorted for
// stable error messages.
func CheckStability(old, next map[string]int64) error {
	var dropped []string
	for ukey := range old {
		if _, ok := next[ukey]; !ok {
			dropped = append(dropped, ukey)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	sort.Strings(dropped)
	return fmt.Errorf("%w: %d ukey(s) would be dropped, first %q",
		errs.ErrContentStability, len(dropped), dropped[0])
}
