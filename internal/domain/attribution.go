package domain

// CountAttributedPlaces returns how many places in the list are creditable
// to memberID, recomputed from the places themselves rather than the cached
// per-member counter.
//
// Collaborators get the exact count of places they added. The owner also gets
// the exact count, except when it is zero and unattributed places exist: then
// the owner is credited with all of them. Lists created before attribution
// existed have only unattributed entries, all contributed by the owner; once
// real attribution data exists the fallback stops firing, so nothing is
// double-counted.
func CountAttributedPlaces(list *List, memberID string) int {
	if list == nil || memberID == "" {
		return 0
	}
	exact := 0
	unattributed := 0
	for _, p := range list.Places {
		switch p.AddedBy {
		case memberID:
			exact++
		case "":
			unattributed++
		}
	}
	if memberID == list.OwnerID && exact == 0 && unattributed > 0 {
		return unattributed
	}
	return exact
}
