// Package claims provides persistence infrastructure for the claims system.
package claims

import (
	"fmt"
	"sync"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// ClaimRepository defines the interface for claim persistence.
// Implementations hand out deep copies so callers never share state with
// the store.
type ClaimRepository interface {
	Save(claim *domainClaims.Claim) error
	FindByID(id string) (*domainClaims.Claim, error)
	FindAll() ([]*domainClaims.Claim, error)
	FindByStatus(status domainClaims.ClaimStatus) ([]*domainClaims.Claim, error)
	Delete(id string) error
	Count() int
	CountByStatus(status domainClaims.ClaimStatus) int
}

// VisitRepository defines the interface for visit reference data.
type VisitRepository interface {
	Save(visit domainClaims.Visit) error
	FindByID(id string) (domainClaims.Visit, error)
	FindAll() ([]domainClaims.Visit, error)
	Count() int
}

// InMemoryClaimRepository provides an in-memory claim repository.
// Insertion order is tracked so listings come back newest first.
type InMemoryClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]*domainClaims.Claim
	order  []string
}

// NewInMemoryClaimRepository creates a new in-memory claim repository.
func NewInMemoryClaimRepository() *InMemoryClaimRepository {
	return &InMemoryClaimRepository{
		claims: make(map[string]*domainClaims.Claim),
	}
}

// Save saves a claim. New ids are prepended to the listing order; saving an
// existing id keeps its position.
func (r *InMemoryClaimRepository) Save(claim *domainClaims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[claim.ID]; !exists {
		r.order = append([]string{claim.ID}, r.order...)
	}
	r.claims[claim.ID] = claim.Clone()
	return nil
}

// FindByID finds a claim by ID.
func (r *InMemoryClaimRepository) FindByID(id string) (*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claim, exists := r.claims[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domainClaims.ErrNotFound, id)
	}

	return claim.Clone(), nil
}

// FindAll returns all claims, newest first.
func (r *InMemoryClaimRepository) FindAll() ([]*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domainClaims.Claim, 0, len(r.order))
	for _, id := range r.order {
		claim, exists := r.claims[id]
		if !exists {
			// A deleted id can linger in order briefly; skip it.
			continue
		}
		result = append(result, claim.Clone())
	}

	return result, nil
}

// FindByStatus returns claims with the given status, newest first.
func (r *InMemoryClaimRepository) FindByStatus(status domainClaims.ClaimStatus) ([]*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domainClaims.Claim, 0)
	for _, id := range r.order {
		claim, exists := r.claims[id]
		if !exists || claim.Status != status {
			continue
		}
		result = append(result, claim.Clone())
	}

	return result, nil
}

// Delete deletes a claim.
func (r *InMemoryClaimRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[id]; !exists {
		return fmt.Errorf("%w: %s", domainClaims.ErrNotFound, id)
	}

	delete(r.claims, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the total number of claims.
func (r *InMemoryClaimRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.claims)
}

// CountByStatus returns the count of claims with a given status.
func (r *InMemoryClaimRepository) CountByStatus(status domainClaims.ClaimStatus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, claim := range r.claims {
		if claim.Status == status {
			count++
		}
	}
	return count
}

// Clear clears all claims (for testing).
func (r *InMemoryClaimRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims = make(map[string]*domainClaims.Claim)
	r.order = nil
}

// InMemoryVisitRepository provides an in-memory visit repository.
type InMemoryVisitRepository struct {
	mu     sync.RWMutex
	visits map[string]domainClaims.Visit
	order  []string
}

// NewInMemoryVisitRepository creates a visit repository preloaded with the
// demo visit set.
func NewInMemoryVisitRepository() *InMemoryVisitRepository {
	r := &InMemoryVisitRepository{
		visits: make(map[string]domainClaims.Visit),
	}
	for _, visit := range domainClaims.SeedVisits() {
		r.visits[visit.ID] = visit
		r.order = append(r.order, visit.ID)
	}
	return r
}

// Save saves a visit.
func (r *InMemoryVisitRepository) Save(visit domainClaims.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.visits[visit.ID]; !exists {
		r.order = append(r.order, visit.ID)
	}
	r.visits[visit.ID] = visit
	return nil
}

// FindByID finds a visit by ID.
func (r *InMemoryVisitRepository) FindByID(id string) (domainClaims.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visit, exists := r.visits[id]
	if !exists {
		return domainClaims.Visit{}, fmt.Errorf("%w: %s", domainClaims.ErrVisitNotFound, id)
	}
	return visit, nil
}

// FindAll returns all visits in seed order.
func (r *InMemoryVisitRepository) FindAll() ([]domainClaims.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domainClaims.Visit, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.visits[id])
	}
	return result, nil
}

// Count returns the total number of visits.
func (r *InMemoryVisitRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.visits)
}
