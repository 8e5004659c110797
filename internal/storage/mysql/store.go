// Package mysql is the MySQL-backed domain.Store.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"unihaven/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
	repos
}

func New(db *sql.DB) *Store { return &Store{db: db, repos: repos{db: db, q: db}} }

// Open connects with the settings the store relies on: parsed times in UTC
// and found-rows semantics for RowsAffected.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r domain.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, repos{db: s.db, q: tx, tx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	return tx.Commit()
}

// repos runs against the pool (autocommit) or a transaction.
type repos struct {
	db *sql.DB
	q  querier
	tx bool
}

func (r repos) Accommodations() domain.AccommodationRepository { return accommodations{r} }
func (r repos) Reservations() domain.ReservationRepository     { return reservations{r} }
func (r repos) Ratings() domain.RatingRepository               { return ratings{r} }
func (r repos) Directory() domain.DirectoryRepository          { return directory{r} }
func (r repos) Audit() domain.AuditRepository                  { return audit{r} }

// lock appends a row lock to single-row reads made inside a transaction.
func (r repos) lock(query string) string {
	if r.tx {
		return query + " FOR UPDATE"
	}
	return query
}

// atomic runs multi-statement writes in the current transaction, or in a
// fresh one when called outside InTx.
func (r repos) atomic(ctx context.Context, fn func(q querier) error) error {
	if r.tx {
		return fn(r.q)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r repos) exists(ctx context.Context, query string, id int64, what string) error {
	var one int
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&one); err != nil {
		return mapErr(err, what)
	}
	return nil
}

func (r repos) insert(ctx context.Context, what, query string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapErr(err, what)
	}
	return res.LastInsertId()
}

func (r repos) update(ctx context.Context, what, query string, args ...any) error {
	return execOne(ctx, r.q, what, query, args...)
}

// execOne runs a single-row UPDATE/DELETE and reports a missing row as not
// found. Open sets ClientFoundRows, so an unchanged row still counts.
func execOne(ctx context.Context, q querier, what, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(what)
	}
	return nil
}

// MySQL error numbers the store translates.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

// errNoParent marks a foreign key pointing at a missing row.
var errNoParent = errors.New("referenced record missing")

func mapErr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(what)
	}
	var me *drv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return domain.Conflict("%s already exists", what)
		case errRowIsReferenced:
			return domain.Conflict("%s is still referenced", what)
		case errNoReferencedRow:
			return fmt.Errorf("%w: %w", errNoParent, domain.ErrNotFound)
		}
	}
	return err
}

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
