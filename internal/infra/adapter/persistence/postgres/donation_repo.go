package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

type DonationRepo struct{ db *sql.DB }

func NewDonationRepo(db *sql.DB) repository.DonationRepository {
	return &DonationRepo{db: db}
}

const donationColumns = `id, reference, amount, email, name, method, status, gateway_data, created_at, updated_at`

func scanDonation(row rowScanner) (*entity.Donation, error) {
	var d entity.Donation
	var gatewayData []byte
	if err := row.Scan(&d.ID, &d.Reference, &d.Amount, &d.Email, &d.Name, &d.Method,
		&d.Status, &gatewayData, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if len(gatewayData) > 0 {
		d.GatewayData = gatewayData
	}
	return &d, nil
}

// buildDonationWhere builds the WHERE clause shared by List and Count.
func buildDonationWhere(f repository.DonationFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Method != nil {
		add("method = $%d", *f.Method)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (repo *DonationRepo) Create(ctx context.Context, d *entity.Donation) error {
	const query = `
INSERT INTO donations (id, reference, amount, email, name, method, status, gateway_data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	var gatewayData any
	if len(d.GatewayData) > 0 {
		gatewayData = []byte(d.GatewayData)
	}
	if _, err := repo.db.ExecContext(ctx, query,
		d.ID, d.Reference, d.Amount, d.Email, d.Name, d.Method, d.Status, gatewayData, d.CreatedAt, d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Create: %w", conflictOr(err, "Donation reference already exists"))
	}
	return nil
}

func (repo *DonationRepo) GetByReference(ctx context.Context, reference string) (*entity.Donation, error) {
	query := `SELECT ` + donationColumns + `
FROM donations
WHERE reference = $1
LIMIT 1`
	d, err := scanDonation(repo.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByReference: %w", err)
	}
	return d, nil
}

func (repo *DonationRepo) UpdateVerification(ctx context.Context, d *entity.Donation) error {
	const query = `
UPDATE donations
SET status = $1, method = $2, gateway_data = $3, updated_at = $4
WHERE reference = $5`
	var gatewayData any
	if len(d.GatewayData) > 0 {
		gatewayData = []byte(d.GatewayData)
	}
	d.UpdatedAt = time.Now().UTC()
	res, err := repo.db.ExecContext(ctx, query, d.Status, d.Method, gatewayData, d.UpdatedAt, d.Reference)
	if err != nil {
		return fmt.Errorf("UpdateVerification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateVerification: no rows affected")
	}
	return nil
}

func (repo *DonationRepo) List(ctx context.Context, f repository.DonationFilters, limit, offset int) ([]*entity.Donation, error) {
	where, args := buildDonationWhere(f)
	query := `SELECT ` + donationColumns + `
FROM donations
` + where + `
ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	donations := make([]*entity.Donation, 0, 50)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func (repo *DonationRepo) Count(ctx context.Context, f repository.DonationFilters) (int64, error) {
	where, args := buildDonationWhere(f)
	query := "SELECT COUNT(*) FROM donations " + where
	var n int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (repo *DonationRepo) ListPending(ctx context.Context, after, before time.Time, limit int) ([]*entity.Donation, error) {
	query := `SELECT ` + donationColumns + `
FROM donations
WHERE status = $1 AND created_at >= $2 AND created_at <= $3
ORDER BY created_at ASC
LIMIT $4`
	rows, err := repo.db.QueryContext(ctx, query, entity.DonationPending, after, before, limit)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	donations := make([]*entity.Donation, 0, limit)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPending: Scan: %w", err)
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func (repo *DonationRepo) SumSuccessful(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM donations WHERE status = $1`
	var total float64
	if err := repo.db.QueryRowContext(ctx, query, entity.DonationSuccessful).Scan(&total); err != nil {
		return 0, fmt.Errorf("SumSuccessful: %w", err)
	}
	return total, nil
}
