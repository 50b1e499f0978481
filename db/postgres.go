package db

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

type contextTxKey struct{}

// PostgresStore is a workflow.Store backed by PostgreSQL
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to the configured database
func OpenPostgres(cfg config.DatabaseConfig) (*PostgresStore, error) {
	conn, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to connect to postgres", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return NewPostgresStore(conn), nil
}

// NewPostgresStore wraps an open connection
func NewPostgresStore(conn *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

// EnsureSchema creates the tables if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to apply schema", err)
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// WithinTx runs fn in a transaction carried by ctx. Nested calls join the
// outer transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(contextTxKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to begin transaction", err)
	}
	if err := fn(context.WithValue(ctx, contextTxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to commit transaction", err)
	}
	return nil
}

func (s *PostgresStore) conn(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(contextTxKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// forUpdate locks selected rows when running inside a transaction
func forUpdate(ctx context.Context) string {
	if _, ok := ctx.Value(contextTxKey{}).(*sqlx.Tx); ok {
		return " FOR UPDATE"
	}
	return ""
}

func (s *PostgresStore) CreatePartner(ctx context.Context, p *workflow.Partner) error {
	query := `
		INSERT INTO partners (
			id, business_name, contact_name, phone, email, pricing_tier,
			status, review_note, created_at, updated_at, approved_at
		) VALUES (
			:id, :business_name, :contact_name, :phone, :email, :pricing_tier,
			:status, :review_note, :created_at, :updated_at, :approved_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, s.conn(ctx), query, p)
	return classify(err, "partner", p.ID)
}

func (s *PostgresStore) GetPartner(ctx context.Context, id string) (*workflow.Partner, error) {
	var p workflow.Partner
	query := `SELECT * FROM partners WHERE id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, s.conn(ctx), &p, query, id); err != nil {
		return nil, classify(err, "partner", id)
	}
	return &p, nil
}

func (s *PostgresStore) UpdatePartner(ctx context.Context, p *workflow.Partner) error {
	query := `
		UPDATE partners SET
			business_name = :business_name,
			contact_name = :contact_name,
			phone = :phone,
			email = :email,
			pricing_tier = :pricing_tier,
			status = :status,
			review_note = :review_note,
			updated_at = :updated_at,
			approved_at = :approved_at
		WHERE id = :id
	`
	res, err := sqlx.NamedExecContext(ctx, s.conn(ctx), query, p)
	if err != nil {
		return classify(err, "partner", p.ID)
	}
	return expectRow(res, "partner", p.ID)
}

func (s *PostgresStore) ListPartners(ctx context.Context, status workflow.Status) ([]*workflow.Partner, error) {
	out := []*workflow.Partner{}
	query := `SELECT * FROM partners WHERE ($1::text = '' OR status = $1) ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, s.conn(ctx), &out, query, string(status)); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to list partners", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateUpgrade(ctx context.Context, r *workflow.UpgradeRequest) error {
	query := `
		INSERT INTO tier_upgrade_requests (
			id, partner_id, current_tier, requested_tier, reason, status,
			review_note, reviewed_by, created_at, reviewed_at
		) VALUES (
			:id, :partner_id, :current_tier, :requested_tier, :reason, :status,
			:review_note, :reviewed_by, :created_at, :reviewed_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, s.conn(ctx), query, r)
	return classify(err, "upgrade request", r.ID)
}

func (s *PostgresStore) GetUpgrade(ctx context.Context, id string) (*workflow.UpgradeRequest, error) {
	var r workflow.UpgradeRequest
	query := `SELECT * FROM tier_upgrade_requests WHERE id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, s.conn(ctx), &r, query, id); err != nil {
		return nil, classify(err, "upgrade request", id)
	}
	return &r, nil
}

func (s *PostgresStore) UpdateUpgrade(ctx context.Context, r *workflow.UpgradeRequest) error {
	query := `
		UPDATE tier_upgrade_requests SET
			status = :status,
			review_note = :review_note,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at
		WHERE id = :id
	`
	res, err := sqlx.NamedExecContext(ctx, s.conn(ctx), query, r)
	if err != nil {
		return classify(err, "upgrade request", r.ID)
	}
	return expectRow(res, "upgrade request", r.ID)
}

func (s *PostgresStore) ListUpgrades(ctx context.Context, filter workflow.UpgradeFilter) ([]*workflow.UpgradeRequest, error) {
	out := []*workflow.UpgradeRequest{}
	query := `
		SELECT * FROM tier_upgrade_requests
		WHERE ($1::text = '' OR partner_id = $1)
		  AND ($2::text = '' OR status = $2)
		ORDER BY created_at, id
	`
	if err := sqlx.SelectContext(ctx, s.conn(ctx), &out, query, filter.PartnerID, string(filter.Status)); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to list upgrade requests", err)
	}
	return out, nil
}

// classify maps driver errors onto domain error types
func classify(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, id)
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.Wrapf(errors.TypeConflict, err, "%s conflicts with an existing record", resource).
			WithContext("constraint", pqErr.Constraint)
	}
	return errors.Wrapf(errors.TypeInternal, err, "%s %s", resource, id)
}

func expectRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to check rows affected", err)
	}
	if n == 0 {
		return errors.NotFound(resource, id)
	}
	return nil
}

var _ workflow.Store = (*PostgresStore)(nil)
