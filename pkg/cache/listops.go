package cache

import "github.com/boardkit/livecache/pkg/models"

// List helpers shared by the mutation executor and the realtime ingestor.
// Every function returns a fresh slice, upholding the store's copy-on-write
// rule; the input is never modified.

// IndexOfID returns the position of the record with the given id, or -1.
func IndexOfID(list []models.Record, id models.ID) int {
	for i, r := range list {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

// ReplaceID swaps every occurrence of id for rec, keeping positions.
func ReplaceID(list []models.Record, id models.ID, rec models.Record) []models.Record {
	out := make([]models.Record, len(list))
	for i, r := range list {
		if r.RecordID() == id {
			out[i] = rec
		} else {
			out[i] = r
		}
	}
	return out
}

// RemoveID drops every occurrence of id.
func RemoveID(list []models.Record, id models.ID) []models.Record {
	out := make([]models.Record, 0, len(list))
	for _, r := range list {
		if r.RecordID() != id {
			out = append(out, r)
		}
	}
	return out
}

// DedupByID keeps the first occurrence of each id and drops the rest.
func DedupByID(list []models.Record) []models.Record {
	seen := make(map[models.ID]bool, len(list))
	out := make([]models.Record, 0, len(list))
	for _, r := range list {
		if seen[r.RecordID()] {
			continue
		}
		seen[r.RecordID()] = true
		out = append(out, r)
	}
	return out
}

// Insert places rec at the end or the start of the list per the kind's
// ordering policy.
func Insert(list []models.Record, rec models.Record, order models.Order) []models.Record {
	out := make([]models.Record, 0, len(list)+1)
	if order == models.OrderPrepend {
		out = append(out, rec)
		out = append(out, list...)
		return out
	}
	out = append(out, list...)
	return append(out, rec)
}
