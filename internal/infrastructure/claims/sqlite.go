package claims

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// SQLiteStoreConfig configures the SQLite claim store.
type SQLiteStoreConfig struct {
	DatabasePath string
}

// SQLiteClaimStore implements ClaimRepository and VisitRepository backed by
// a local SQLite database. Structured claim fields that policy and listings
// never query are stored as JSON columns.
type SQLiteClaimStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// NewSQLiteClaimStore opens (or creates) the claim database and seeds the
// visit reference table when it is empty.
func NewSQLiteClaimStore(config SQLiteStoreConfig) (*SQLiteClaimStore, error) {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = ".data/claims.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteClaimStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := store.seedVisits(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates the database schema.
func (s *SQLiteClaimStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			visit_id TEXT NOT NULL,
			rep_name TEXT NOT NULL,
			category TEXT NOT NULL,
			merchant TEXT NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			notes TEXT NOT NULL,
			attendees TEXT NOT NULL,
			receipt TEXT,
			flags TEXT NOT NULL,
			policy TEXT NOT NULL,
			audit_trail TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
		CREATE INDEX IF NOT EXISTS idx_claims_created ON claims(created_at);

		CREATE TABLE IF NOT EXISTS visits (
			id TEXT PRIMARY KEY,
			hcp_name TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// seedVisits inserts the demo visit set if the table is empty.
func (s *SQLiteClaimStore) seedVisits() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, visit := range domainClaims.SeedVisits() {
		if _, err := s.db.Exec(`INSERT INTO visits (id, hcp_name) VALUES (?, ?)`,
			visit.ID, visit.HCPName); err != nil {
			return fmt.Errorf("failed to seed visits: %w", err)
		}
	}
	return nil
}

// Save upserts a claim as a single row.
func (s *SQLiteClaimStore) Save(claim *domainClaims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("claim store is closed")
	}

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

	_, err = s.db.Exec(`
		INSERT INTO claims (id, visit_id, rep_name, category, merchant, amount, currency,
			status, notes, attendees, receipt, flags, policy, audit_trail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			visit_id = excluded.visit_id,
			rep_name = excluded.rep_name,
			category = excluded.category,
			merchant = excluded.merchant,
			amount = excluded.amount,
			currency = excluded.currency,
			status = excluded.status,
			notes = excluded.notes,
			attendees = excluded.attendees,
			receipt = excluded.receipt,
			flags = excluded.flags,
			policy = excluded.policy,
			audit_trail = excluded.audit_trail,
			updated_at = excluded.updated_at
	`,
		claim.ID, claim.VisitID, claim.RepName, string(claim.Category), claim.Merchant,
		claim.Amount, string(claim.Currency), string(claim.Status), claim.Notes,
		string(attendees), receipt, string(flags), string(policy), string(audit),
		claim.CreatedAt.UnixMilli(), claim.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save claim: %w", err)
	}

	return nil
}

const claimColumns = `id, visit_id, rep_name, category, merchant, amount, currency,
	status, notes, attendees, receipt, flags, policy, audit_trail, created_at, updated_at`

// FindByID finds a claim by ID.
func (s *SQLiteClaimStore) FindByID(id string) (*domainClaims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id)
	claim, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domainClaims.ErrNotFound, id)
	}
	return claim, err
}

// FindAll returns all claims, newest first.
func (s *SQLiteClaimStore) FindAll() ([]*domainClaims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + claimColumns + ` FROM claims ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClaims(rows)
}

// FindByStatus returns claims with the given status, newest first.
func (s *SQLiteClaimStore) FindByStatus(status domainClaims.ClaimStatus) ([]*domainClaims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+claimColumns+` FROM claims WHERE status = ? ORDER BY created_at DESC, id DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClaims(rows)
}

// Delete deletes a claim.
func (s *SQLiteClaimStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM claims WHERE id = ?`, id)
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
func (s *SQLiteClaimStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM claims`).Scan(&count)
	return count
}

// CountByStatus returns the count of claims with a given status.
func (s *SQLiteClaimStore) CountByStatus(status domainClaims.ClaimStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM claims WHERE status = ?`, string(status)).Scan(&count)
	return count
}

// SaveVisit upserts a visit.
func (s *SQLiteClaimStore) SaveVisit(visit domainClaims.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO visits (id, hcp_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET hcp_name = excluded.hcp_name
	`, visit.ID, visit.HCPName)
	return err
}

// FindVisitByID finds a visit by ID.
func (s *SQLiteClaimStore) FindVisitByID(id string) (domainClaims.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visit domainClaims.Visit
	err := s.db.QueryRow(`SELECT id, hcp_name FROM visits WHERE id = ?`, id).
		Scan(&visit.ID, &visit.HCPName)
	if errors.Is(err, sql.ErrNoRows) {
		return domainClaims.Visit{}, fmt.Errorf("%w: %s", domainClaims.ErrVisitNotFound, id)
	}
	return visit, err
}

// FindAllVisits returns all visits in id order.
func (s *SQLiteClaimStore) FindAllVisits() ([]domainClaims.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, hcp_name FROM visits ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := make([]domainClaims.Visit, 0)
	for rows.Next() {
		var visit domainClaims.Visit
		if err := rows.Scan(&visit.ID, &visit.HCPName); err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}

// Close closes the store.
func (s *SQLiteClaimStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// visitAdapter exposes the store's visit tables through VisitRepository.
type visitAdapter struct {
	store *SQLiteClaimStore
}

// Visits returns a VisitRepository view of the store.
func (s *SQLiteClaimStore) Visits() VisitRepository {
	return &visitAdapter{store: s}
}

func (a *visitAdapter) Save(visit domainClaims.Visit) error { return a.store.SaveVisit(visit) }

func (a *visitAdapter) FindByID(id string) (domainClaims.Visit, error) {
	return a.store.FindVisitByID(id)
}

func (a *visitAdapter) FindAll() ([]domainClaims.Visit, error) { return a.store.FindAllVisits() }

func (a *visitAdapter) Count() int {
	visits, err := a.store.FindAllVisits()
	if err != nil {
		return 0
	}
	return len(visits)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanClaim scans one claims row.
func scanClaim(row rowScanner) (*domainClaims.Claim, error) {
	var (
		claim       domainClaims.Claim
		category    string
		currency    string
		status      string
		attendees   string
		receipt     sql.NullString
		flags       string
		policy      string
		audit       string
		createdMs   int64
		updatedMs   int64
	)

	err := row.Scan(&claim.ID, &claim.VisitID, &claim.RepName, &category, &claim.Merchant,
		&claim.Amount, &currency, &status, &claim.Notes, &attendees, &receipt,
		&flags, &policy, &audit, &createdMs, &updatedMs)
	if err != nil {
		return nil, err
	}

	claim.Category = domainClaims.Category(category)
	claim.Currency = domainClaims.Currency(currency)
	claim.Status = domainClaims.ClaimStatus(status)
	claim.CreatedAt = time.UnixMilli(createdMs)
	claim.UpdatedAt = time.UnixMilli(updatedMs)

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

// scanClaims scans a result set of claims rows.
func scanClaims(rows *sql.Rows) ([]*domainClaims.Claim, error) {
	claims := make([]*domainClaims.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}
