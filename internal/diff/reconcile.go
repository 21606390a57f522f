package diff

import (
	"cmp"
	"slices"
)

// Reconcile partitions two key sets into the keys present only in
// observed, the keys present in both, and the keys present only in
// desired. Both inputs are sorted copies and merged in a single scan,
// so all three partitions come back in ascending order, which the plan
// ordering downstream relies on. Payloads are never inspected here,
// only key identity.
func Reconcile[K cmp.Ordered](observed, desired []K) (onlyObserved, both, onlyDesired []K) {
	obs := slices.Clone(observed)
	des := slices.Clone(desired)
	slices.Sort(obs)
	slices.Sort(des)

	i, j := 0, 0
	for i < len(obs) && j < len(des) {
		switch {
		case obs[i] == des[j]:
			both = append(both, obs[i])
			i++
			j++
		case obs[i] < des[j]:
			onlyObserved = append(onlyObserved, obs[i])
			i++
		default:
			onlyDesired = append(onlyDesired, des[j])
			j++
		}
	}
	onlyObserved = append(onlyObserved, obs[i:]...)
	onlyDesired = append(onlyDesired, des[j:]...)

	return onlyObserved, both, onlyDesired
}
