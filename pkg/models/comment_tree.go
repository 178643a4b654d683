package models

import "sort"

// Threads reshapes a flat comment collection into the two-level structure the
// UI renders: top-level comments newest-first, each carrying its direct
// replies oldest-first. The input is never modified; every returned comment is
// a copy.
//
// Only one level of nesting is modeled. Replies to replies are re-parented
// onto the thread root at creation time, so a reply's ParentID always names a
// top-level comment here; replies whose parent is missing from the input are
// dropped.
func Threads(flat []*Comment) []*Comment {
	byID := make(map[ID]*Comment, len(flat))
	var roots []*Comment

	for _, c := range flat {
		cp := c.Clone().(*Comment)
		cp.Replies = []*Comment{}
		byID[cp.ID] = cp
		if cp.ParentID.IsZero() {
			roots = append(roots, cp)
		}
	}

	for _, c := range flat {
		if c.ParentID.IsZero() {
			continue
		}
		parent, ok := byID[c.ParentID]
		if !ok {
			continue
		}
		parent.Replies = append(parent.Replies, byID[c.ID])
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	for _, root := range roots {
		replies := root.Replies
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
	}
	return roots
}
