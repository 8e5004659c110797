package memory

import (
	"context"
	"sort"

	"unihaven/internal/domain"
)

type audit struct{ repos }

func (r audit) Append(ctx context.Context, e domain.ActionLog) (domain.ActionLog, error) {
	err := r.write(func(st *state) error {
		for _, other := range st.logs {
			if e.EventID != "" && other.EventID == e.EventID {
				return domain.Conflict("audit event %s already recorded", e.EventID)
			}
		}
		e.ID = st.next("action_logs")
		st.logs = append(st.logs, e)
		return nil
	})
	return e, err
}

// Query returns newest first, ties by id.
func (r audit) Query(ctx context.Context, q domain.AuditQuery) (domain.Page[domain.ActionLog], error) {
	var hits []domain.ActionLog
	_ = r.read(func(st *state) error {
		for _, e := range st.logs {
			if q.Matches(e) {
				hits = append(hits, e)
			}
		}
		return nil
	})
	sort.SliceStable(hits, func(i, j int) bool {
		if !hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		}
		return hits[i].ID < hits[j].ID
	})
	return domain.Slice(hits, q.Page), nil
}
