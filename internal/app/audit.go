package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"unihaven/internal/adapters/observability"
	"unihaven/internal/domain"
)

type ctxKey int

const clientIPKey ctxKey = iota

// WithClientIP attaches the caller's address so audit entries can record it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// auditor is the single way state-machine operations write ActionLog
// entries. It must be called with the transaction's Repositories so the
// entry commits or rolls back together with the change it describes.
type auditor struct {
	now func() time.Time
}

func (a auditor) emit(ctx context.Context, r domain.Repositories, e domain.ActionLog) error {
	e.EventID = uuid.NewString()
	e.CreatedAt = a.now()
	e.IPAddress = clientIP(ctx)
	if e.ActorType == "" {
		e.ActorType = domain.ActorSystem
	}
	if _, err := r.Audit().Append(ctx, e); err != nil {
		return err
	}
	observability.ObserveAudit(string(e.ActionType))
	return nil
}

func entry(action domain.ActionType, actor domain.Actor, details string) domain.ActionLog {
	return domain.ActionLog{ActionType: action, ActorType: actor.Type, ActorID: actor.ID, Details: details}
}

func ref(id int64) *int64 { return &id }

type AuditService struct {
	store domain.Store
}

func NewAuditService(s domain.Store) *AuditService { return &AuditService{store: s} }

// Query pages the log newest first. An empty page is reported as not found.
func (s *AuditService) Query(ctx context.Context, q domain.AuditQuery) (domain.Page[domain.ActionLog], error) {
	q.Page = q.Page.Normalize(domain.AuditPageSize)
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return domain.Page[domain.ActionLog]{}, domain.Invalid("start_date must not be after end_date")
	}
	page, err := s.store.Audit().Query(ctx, q)
	if err != nil {
		return domain.Page[domain.ActionLog]{}, err
	}
	if len(page.Items) == 0 {
		return page, domain.NotFound("logs")
	}
	log.Debug().Int("count", page.Total).Int("page", page.Page).Msg("audit query")
	return page, nil
}
