package claims

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// PostgresClaimStore implements ClaimRepository over a PostgreSQL database,
// connected through the pgx stdlib driver. It targets shared multi-user
// deployments; the local CLI uses SQLite instead.
type PostgresClaimStore struct {
	db *sql.DB
}

// NewPostgresClaimStore opens a connection pool for the given DSN and
// ensures the schema exists.
func NewPostgresClaimStore(ctx context.Context, dsn string) (*PostgresClaimStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &PostgresClaimStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := store.seedVisits(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresClaimStore) initSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			visit_id TEXT NOT NULL,
			rep_name TEXT NOT NULL,
			category TEXT NOT NULL,
			merchant TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			notes TEXT NOT NULL,
			attendees JSONB NOT NULL,
			receipt JSONB,
			flags JSONB NOT NULL,
			policy JSONB NOT NULL,
			audit_trail JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
		CREATE INDEX IF NOT EXISTS idx_claims_created ON claims(created_at);

		CREATE TABLE IF NOT EXISTS visits (
			id TEXT PRIMARY KEY,
			hcp_name TEXT NOT NULL
		);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresClaimStore) seedVisits(ctx context.Context) error {
	for _, visit := range domainClaims.SeedVisits() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO visits (id, hcp_name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, visit.ID, visit.HCPName)
		if err != nil {
			return fmt.Errorf("failed to seed visits: %w", err)
		}
	}
	return nil
}

// Save upserts a claim.
func (s *PostgresClaimStore) Save(claim *domainClaims.Claim) error {
	attendees, err := json.Marshal(claim.Attendees)
	if err != nil {
		return fmt.Errorf("failed to serialize attendees: %w", err)
	}
	flags, err := json.Marshal(claim.Flags)
	if err != nil {
		return fmt.Errorf("failed to serialize flags: %w", err)
	}
	policy, err := json.Marshal(claim.Policy)
	if err != nil {
		return fmt.Errorf("failed to serialize policy: %w", err)
	}
	audit, err := json.Marshal(claim.Audit)
	if err != nil {
		return fmt.Errorf("failed to serialize audit trail: %w", err)
	}

	var receipt sql.NullString
	if claim.Receipt != nil {
		data, err := json.Marshal(claim.Receipt)
		if err != nil {
			return fmt.Errorf("failed to serialize receipt: %w", err)
		}
		receipt = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO claims (id, visit_id, rep_name, category, merchant, amount, currency,
			status, notes, attendees, receipt, flags, policy, audit_trail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id)
		DO UPDATE SET
			visit_id = EXCLUDED.visit_id,
			rep_name = EXCLUDED.rep_name,
			category = EXCLUDED.category,
			merchant = EXCLUDED.merchant,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			attendees = EXCLUDED.attendees,
			receipt = EXCLUDED.receipt,
			flags = EXCLUDED.flags,
			policy = EXCLUDED.policy,
			audit_trail = EXCLUDED.audit_trail,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.Exec(query,
		claim.ID, claim.VisitID, claim.RepName, string(claim.Category), claim.Merchant,
		claim.Amount, string(claim.Currency), string(claim.Status), claim.Notes,
		string(attendees), receipt, string(flags), string(policy), string(audit),
		claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}

const pgClaimColumns = `id, visit_id, rep_name, category, merchant, amount, currency,
	status, notes, attendees, receipt, flags, policy, audit_trail, created_at, updated_at`

// FindByID finds a claim by ID.
func (s *PostgresClaimStore) FindByID(id string) (*domainClaims.Claim, error) {
	row := s.db.QueryRow(`SELECT `+pgClaimColumns+` FROM claims WHERE id = $1`, id)
	claim, err := scanPgClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domainClaims.ErrNotFound, id)
	}
	return claim, err
}

// FindAll returns all claims, newest first.
func (s *PostgresClaimStore) FindAll() ([]*domainClaims.Claim, error) {
	rows, err := s.db.Query(`SELECT ` + pgClaimColumns + ` FROM claims ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]*domainClaims.Claim, 0)
	for rows.Next() {
		claim, err := scanPgClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// FindByStatus returns claims with the given status, newest first.
func (s *PostgresClaimStore) FindByStatus(status domainClaims.ClaimStatus) ([]*domainClaims.Claim, error) {
	rows, err := s.db.Query(`
		SELECT `+pgClaimColumns+` FROM claims WHERE status = $1 ORDER BY created_at DESC, id DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]*domainClaims.Claim, 0)
	for rows.Next() {
		claim, err := scanPgClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// Delete deletes a claim.
func (s *PostgresClaimStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domainClaims.ErrNotFound, id)
	}
	return nil
}

// Count returns the total number of claims.
func (s *PostgresClaimStore) Count() int {
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM claims`).Scan(&count)
	return count
}

// CountByStatus returns the count of claims with a given status.
func (s *PostgresClaimStore) CountByStatus(status domainClaims.ClaimStatus) int {
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM claims WHERE status = $1`, string(status)).Scan(&count)
	return count
}

// Close closes the connection pool.
func (s *PostgresClaimStore) Close() error {
	return s.db.Close()
}

func scanPgClaim(row rowScanner) (*domainClaims.Claim, error) {
	var (
		claim     domainClaims.Claim
		category  string
		currency  string
		status    string
		attendees string
		receipt   sql.NullString
		flags     string
		policy    string
		audit     string
	)

	err := row.Scan(&claim.ID, &claim.VisitID, &claim.RepName, &category, &claim.Merchant,
		&claim.Amount, &currency, &status, &claim.Notes, &attendees, &receipt,
		&flags, &policy, &audit, &claim.CreatedAt, &claim.UpdatedAt)
	if err != nil {
		return nil, err
	}

	claim.Category = domainClaims.Category(category)
	claim.Currency = domainClaims.Currency(currency)
	claim.Status = domainClaims.ClaimStatus(status)

	if err := json.Unmarshal([]byte(attendees), &claim.Attendees); err != nil {
		return nil, fmt.Errorf("failed to decode attendees: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &claim.Flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags: %w", err)
	}
	if err := json.Unmarshal([]byte(policy), &claim.Policy); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}
	if err := json.Unmarshal([]byte(audit), &claim.Audit); err != nil {
		return nil, fmt.Errorf("failed to decode audit trail: %w", err)
	}
	if receipt.Valid && receipt.String != "" {
		var r domainClaims.ReceiptInfo
		if err := json.Unmarshal([]byte(receipt.String), &r); err != nil {
			return nil, fmt.Errorf("failed to decode receipt: %w", err)
		}
		claim.Receipt = &r
	}

	return &claim, nil
}
