package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/haythamforever/HonorHub/internal/certificates/domain"
)

type PGRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGRepository { return &PGRepository{pg: pg} }

const certCols = `c.id, c.certificate_id, c.employee_id, c.tier_id, c.template_id, c.sender_id,
	COALESCE(c.custom_message, ''), COALESCE(c.achievement_description, ''), COALESCE(c.period, ''),
	c.pdf_path, c.email_sent, c.sent_at, c.created_at`

const detailSelect = `SELECT ` + certCols + `,
	e.name, e.email, t.name, COALESCE(t.color, ''), tp.name, u.name
FROM certificates c
JOIN employees e ON e.id = c.employee_id
JOIN tiers t ON t.id = c.tier_id
JOIN templates tp ON tp.id = c.template_id
JOIN users u ON u.id = c.sender_id`

func scanDetail(row pgx.Row) (domain.Detail, error) {
	var d domain.Detail
	c := &d.Certificate
	err := row.Scan(&c.ID, &c.CertificateID, &c.EmployeeID, &c.TierID, &c.TemplateID, &c.SenderID,
		&c.CustomMessage, &c.AchievementDescription, &c.Period,
		&c.PDFPath, &c.EmailSent, &c.SentAt, &c.CreatedAt,
		&d.EmployeeName, &d.EmployeeEmail, &d.TierName, &d.TierColor, &d.TemplateName, &d.SenderName)
	return d, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PGRepository) Create(ctx context.Context, n domain.NewCertificate) (domain.Certificate, error) {
	c := domain.Certificate{
		CertificateID:          n.CertificateID,
		EmployeeID:             n.EmployeeID,
		TierID:                 n.TierID,
		TemplateID:             n.TemplateID,
		SenderID:               n.SenderID,
		CustomMessage:          n.CustomMessage,
		AchievementDescription: n.AchievementDescription,
		Period:                 n.Period,
		PDFPath:                n.PDFPath,
	}
	err := r.pg.QueryRow(ctx, `
		INSERT INTO certificates (certificate_id, employee_id, tier_id, template_id, sender_id,
			custom_message, achievement_description, period, pdf_path, email_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		RETURNING id, created_at`,
		n.CertificateID, n.EmployeeID, n.TierID, n.TemplateID, n.SenderID,
		nullable(n.CustomMessage), nullable(n.AchievementDescription), nullable(n.Period), n.PDFPath,
	).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func (r *PGRepository) GetDetail(ctx context.Context, id int64) (domain.Detail, error) {
	d, err := scanDetail(r.pg.QueryRow(ctx, detailSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return d, domain.ErrCertificateNotFound
	}
	return d, err
}

func (r *PGRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pg.Exec(ctx, `UPDATE certificates SET email_sent = TRUE, sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCertificateNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCertificateNotFound
	}
	return nil
}

func (r *PGRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pg.QueryRow(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&n)
	return n, err
}

func (r *PGRepository) CountByTier(ctx context.Context) ([]domain.TierCount, error) {
	rows, err := r.pg.Query(ctx, `
		SELECT t.id, t.name, COALESCE(t.color, ''), COUNT(c.id)
		FROM tiers t
		LEFT JOIN certificates c ON c.tier_id = t.id
		GROUP BY t.id, t.name, t.color, t.rank
		ORDER BY t.rank, t.id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TierCount, error) {
		var tc domain.TierCount
		err := row.Scan(&tc.TierID, &tc.TierName, &tc.Color, &tc.Count)
		return tc, err
	})
}

func (r *PGRepository) Recent(ctx context.Context, limit int) ([]domain.Detail, error) {
	return r.List(ctx, domain.ListFilter{Limit: limit})
}

func (r *PGRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.Detail, error) {
	var (
		where []string
		args  []any
	)
	add := func(col string, v int64) {
		if v > 0 {
			args = append(args, v)
			where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("c.employee_id", f.EmployeeID)
	add("c.tier_id", f.TierID)
	add("c.sender_id", f.SenderID)

	q := detailSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, max(f.Offset, 0))
	q += fmt.Sprintf(" ORDER BY c.created_at DESC, c.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pg.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Detail, error) { return scanDetail(row) })
}
