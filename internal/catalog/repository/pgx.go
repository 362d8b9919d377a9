package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

type PGRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGRepository { return &PGRepository{pg: pg} }

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return cdomain.ErrNotFound
	}
	return err
}

func (r *PGRepository) GetEmployee(ctx context.Context, id int64) (cdomain.Employee, error) {
	var e cdomain.Employee
	err := r.pg.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(department, ''), COALESCE(position, ''), created_at
		FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Email, &e.Department, &e.Position, &e.CreatedAt)
	return e, notFound(err)
}

const tierCols = `id, name, COALESCE(description, ''), COALESCE(color, ''), rank, created_at`

func scanTier(row pgx.Row) (cdomain.Tier, error) {
	var t cdomain.Tier
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Color, &t.Rank, &t.CreatedAt)
	return t, err
}

func (r *PGRepository) GetTier(ctx context.Context, id int64) (cdomain.Tier, error) {
	t, err := scanTier(r.pg.QueryRow(ctx, `SELECT `+tierCols+` FROM tiers WHERE id = $1`, id))
	return t, notFound(err)
}

func (r *PGRepository) ListTiers(ctx context.Context) ([]cdomain.Tier, error) {
	rows, err := r.pg.Query(ctx, `SELECT `+tierCols+` FROM tiers ORDER BY rank, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cdomain.Tier, error) { return scanTier(row) })
}

const templateCols = `id, name, title, COALESCE(primary_color, ''), COALESCE(secondary_color, ''), design_config, is_default, created_at`

func scanTemplate(row pgx.Row) (cdomain.Template, error) {
	var (
		t      cdomain.Template
		design []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Title, &t.PrimaryColor, &t.SecondaryColor, &design, &t.IsDefault, &t.CreatedAt); err != nil {
		return t, err
	}
	if len(design) > 0 {
		if err := json.Unmarshal(design, &t.Design); err != nil {
			return t, fmt.Errorf("template %d design_config: %w", t.ID, err)
		}
	}
	return t, nil
}

func (r *PGRepository) GetTemplate(ctx context.Context, id int64) (cdomain.Template, error) {
	t, err := scanTemplate(r.pg.QueryRow(ctx, `SELECT `+templateCols+` FROM templates WHERE id = $1`, id))
	return t, notFound(err)
}

func (r *PGRepository) ListTemplates(ctx context.Context) ([]cdomain.Template, error) {
	rows, err := r.pg.Query(ctx, `SELECT `+templateCols+` FROM templates ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cdomain.Template, error) { return scanTemplate(row) })
}

func (r *PGRepository) GetSender(ctx context.Context, id int64) (cdomain.Sender, error) {
	var s cdomain.Sender
	err := r.pg.QueryRow(ctx, `
		SELECT id, name, email, role, COALESCE(signature_name, ''), COALESCE(signature_title, '')
		FROM users WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.SignatureName, &s.SignatureTitle)
	return s, notFound(err)
}

func (r *PGRepository) CountEmployees(ctx context.Context) (int, error) {
	var n int
	err := r.pg.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n)
	return n, err
}

func (r *PGRepository) CountCertificatesByTier(ctx context.Context, tierID int64) (int, error) {
	var n int
	err := r.pg.QueryRow(ctx, `SELECT COUNT(*) FROM certificates WHERE tier_id = $1`, tierID).Scan(&n)
	return n, err
}

func (r *PGRepository) CountCertificatesByTemplate(ctx context.Context, templateID int64) (int, error) {
	var n int
	err := r.pg.QueryRow(ctx, `SELECT COUNT(*) FROM certificates WHERE template_id = $1`, templateID).Scan(&n)
	return n, err
}

func (r *PGRepository) SetDefaultTemplate(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pg, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE templates SET is_default = FALSE WHERE is_default`); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE templates SET is_default = TRUE WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return cdomain.ErrNotFound
		}
		return nil
	})
}

func (r *PGRepository) DeleteTier(ctx context.Context, id int64) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM tiers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cdomain.ErrNotFound
	}
	return nil
}

func (r *PGRepository) DeleteTemplate(ctx context.Context, id int64) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cdomain.ErrNotFound
	}
	return nil
}
