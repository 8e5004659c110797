package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"unihaven/internal/domain"
)

type audit struct{ repos }

func (r audit) Append(ctx context.Context, e domain.ActionLog) (domain.ActionLog, error) {
	id, err := r.insert(ctx, "audit event", insertActionLogSQL,
		e.EventID, string(e.ActionType), string(e.ActorType), valInt64(e.ActorID),
		valInt64(e.AccommodationID), valInt64(e.ReservationID), valInt64(e.RatingID),
		e.Details, e.IPAddress, e.CreatedAt,
	)
	if errors.Is(err, domain.ErrConflict) {
		return domain.ActionLog{}, domain.Conflict("audit event %s already recorded", e.EventID)
	}
	if err != nil {
		return domain.ActionLog{}, err
	}
	e.ID = id
	return e, nil
}

// Query returns newest first, ties by id.
func (r audit) Query(ctx context.Context, q domain.AuditQuery) (domain.Page[domain.ActionLog], error) {
	where, args := auditWhere(q)
	page := domain.Page[domain.ActionLog]{Page: q.Page.Page, PageSize: q.Page.Size, Items: []domain.ActionLog{}}
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM action_logs"+where, args...).Scan(&page.Total); err != nil {
		return page, err
	}

	rows, err := r.q.QueryContext(ctx,
		selectActionLogSQL+where+" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?",
		append(args, q.Page.Size, q.Page.Offset())...)
	if err != nil {
		return page, err
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.ActionLog
		var action, actor string
		var actorID, accID, resID, ratingID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.EventID, &action, &actor, &actorID, &accID, &resID, &ratingID,
			&e.Details, &e.IPAddress, &e.CreatedAt); err != nil {
			return page, err
		}
		e.ActionType = domain.ActionType(action)
		e.ActorType = domain.ActorType(actor)
		e.ActorID = ptrInt64(actorID)
		e.AccommodationID = ptrInt64(accID)
		e.ReservationID = ptrInt64(resID)
		e.RatingID = ptrInt64(ratingID)
		page.Items = append(page.Items, e)
	}
	return page, rows.Err()
}

// auditWhere mirrors AuditQuery.Matches.
func auditWhere(q domain.AuditQuery) (string, []any) {
	var conds []string
	var args []any
	if q.ActionType != "" {
		conds = append(conds, "action_type = ?")
		args = append(args, string(q.ActionType))
	}
	if q.ActorType != "" {
		conds = append(conds, "user_type = ?")
		args = append(args, string(q.ActorType))
	}
	if q.ActorID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *q.ActorID)
	}
	if q.AccommodationID != nil {
		conds = append(conds, "accommodation_id = ?")
		args = append(args, *q.AccommodationID)
	}
	if q.Start != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *q.Start)
	}
	if q.End != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *q.End)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
