package mutate

import (
	"context"

	"github.com/boardkit/livecache/pkg/cache"
	"github.com/boardkit/livecache/pkg/models"
)

// Reorder moves the task at index From to index To within the column of
// tasks holding Status, inside the board identified by Filter.
type Reorder struct {
	Filter cache.Filter
	Status models.TaskStatus
	From   int
	To     int
}

// Move transfers the task at index From in the FromStatus column to index To
// in the ToStatus column, updating its status along the way.
type Move struct {
	Filter     cache.Filter
	FromStatus models.TaskStatus
	ToStatus   models.TaskStatus
	From       int
	To         int
}

// ReorderTasks reorders a board column optimistically. The rearranged list is
// written to the cache immediately and per-task position updates are sent
// sequentially. A failure rolls back and refetches only if no newer reorder
// has started since; otherwise the stale failure is swallowed, because the
// newer invocation already owns the cached state.
func (e *Executor) ReorderTasks(ctx context.Context, r Reorder) error {
	return e.reorder(ctx, r.Filter, func(base []models.Record) []models.Record {
		return reorderColumn(base, r.Status, r.From, r.To)
	})
}

// MoveTask moves a task across board columns with the same staleness rules as
// ReorderTasks.
func (e *Executor) MoveTask(ctx context.Context, m Move) error {
	return e.reorder(ctx, m.Filter, func(base []models.Record) []models.Record {
		return moveAcrossColumns(base, m.FromStatus, m.ToStatus, m.From, m.To)
	})
}

func (e *Executor) reorder(ctx context.Context, filter cache.Filter, rearrange func([]models.Record) []models.Record) error {
	if _, err := e.session.UserID(ctx); err != nil {
		return err
	}

	version := e.reorderSeq.Add(1)
	key := cache.ListKey(models.KindTask, filter)

	var (
		prev    cache.Entry
		cached  bool
		base    []models.Record
		updated []models.Record
	)
	e.store.Modify(key, func(entry cache.Entry, ok bool) (cache.Entry, bool) {
		prev, cached = entry, ok
		if !ok {
			return entry, false
		}
		base = entry.List
		updated = rearrange(base)
		if updated == nil {
			return entry, false
		}
		entry.List = updated
		return entry, true
	})
	if !cached {
		rows, err := e.remote.Select(ctx, models.KindTask, filter)
		if err != nil {
			return err
		}
		base = rows
		updated = rearrange(base)
	}
	if updated == nil {
		return nil
	}

	if err := e.writePositions(ctx, base, updated); err != nil {
		if version != e.reorderSeq.Load() {
			e.log.Debug("suppressing stale reorder failure", "key", key.String(), "error", err)
			return nil
		}
		if cached {
			e.store.Set(key, prev)
		}
		e.store.Invalidate(key)
		e.notify.Failure("failed to reorder tasks", err)
		return err
	}
	return nil
}

// writePositions persists the position and status changes between base and
// updated, one record at a time, aborting on the first failure.
func (e *Executor) writePositions(ctx context.Context, base, updated []models.Record) error {
	before := make(map[string]*models.Task, len(base))
	for _, rec := range base {
		if t, ok := rec.(*models.Task); ok {
			before[t.RecordID().String()] = t
		}
	}
	for _, rec := range updated {
		t, ok := rec.(*models.Task)
		if !ok {
			continue
		}
		old, seen := before[t.RecordID().String()]
		if seen && old.Position == t.Position && old.Status == t.Status {
			continue
		}
		fields := map[string]any{"position": t.Position, "status": string(t.Status)}
		if _, err := e.remote.Update(ctx, models.KindTask, t.RecordID(), fields); err != nil {
			return err
		}
	}
	return nil
}

// reorderColumn rearranges the tasks holding status within base and renumbers
// their positions from 1. Returns nil when the indices are out of range.
// Records outside the column keep their order; rearranged tasks are fresh
// clones, never mutations of cached values.
func reorderColumn(base []models.Record, status models.TaskStatus, from, to int) []models.Record {
	column, others := splitByStatus(base, status)
	if from < 0 || from >= len(column) || to < 0 || to >= len(column) {
		return nil
	}

	moved := column[from]
	column = append(column[:from:from], column[from+1:]...)
	column = append(column[:to:to], append([]models.Record{moved}, column[to:]...)...)

	return joined(others, renumber(column, status))
}

// moveAcrossColumns moves column[from] of fromStatus into toStatus at index
// to, clamping to and renumbering both columns. A same-column move degrades
// to reorderColumn.
func moveAcrossColumns(base []models.Record, fromStatus, toStatus models.TaskStatus, from, to int) []models.Record {
	if fromStatus == toStatus {
		return reorderColumn(base, fromStatus, from, to)
	}

	source, rest := splitByStatus(base, fromStatus)
	if from < 0 || from >= len(source) {
		return nil
	}
	dest, others := splitByStatus(rest, toStatus)

	moved := source[from]
	source = append(source[:from:from], source[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to > len(dest) {
		to = len(dest)
	}
	dest = append(dest[:to:to], append([]models.Record{moved}, dest[to:]...)...)

	out := joined(others, renumber(source, fromStatus))
	return append(out, renumber(dest, toStatus)...)
}

func splitByStatus(base []models.Record, status models.TaskStatus) (column, others []models.Record) {
	for _, rec := range base {
		if t, ok := rec.(*models.Task); ok && t.Status == status {
			column = append(column, rec)
		} else {
			others = append(others, rec)
		}
	}
	return column, others
}

// renumber clones every task in column with its 1-based position and status.
func renumber(column []models.Record, status models.TaskStatus) []models.Record {
	out := make([]models.Record, len(column))
	for i, rec := range column {
		t := rec.Clone().(*models.Task)
		t.Position = i + 1
		t.Status = status
		out[i] = t
	}
	return out
}

func joined(a, b []models.Record) []models.Record {
	out := make([]models.Record, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
