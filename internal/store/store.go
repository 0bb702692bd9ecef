package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/evroutex/fleet-dispatch/internal/models"
)

var (
	// ErrPersistence indicates the document could not be written to the
	// backing medium. It is propagated to callers rather than absorbed;
	// retrying is the caller's decision.
	ErrPersistence = errors.New("failed to persist document")

	// ErrConflict indicates an optimistic write lost the version race too
	// many times in a row.
	ErrConflict = errors.New("document version conflict")
)

// Store is the single source of truth for application state. Every
// mutation goes through Update as a guarded load-mutate-save so that
// concurrent writers cannot silently overwrite each other.
type Store interface {
	// Load returns the current document. A missing or corrupt backing
	// record is transparently reinitialized to the bootstrap default and
	// persisted before returning; corruption is never fatal.
	Load(ctx context.Context) (*models.Document, error)

	// Update applies mutate to a snapshot of the document and commits the
	// result. If mutate returns an error the document is left untouched
	// and the error is returned unchanged.
	Update(ctx context.Context, mutate func(*models.Document) error) error
}

// Bootstrap holds the credentials seeded into a freshly initialized
// document.
type Bootstrap struct {
	AdminUsername string
	AdminPassword string
}

// DefaultDocument builds the initial document: one bootstrap admin,
// no drivers, no assignments.
func DefaultDocument(b Bootstrap) (*models.Document, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(b.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap admin password: %w", err)
	}
	return &models.Document{
		Version: 1,
		Admins: []models.Admin{
			{Username: b.AdminUsername, PasswordHash: string(hash)},
		},
		Drivers:     []models.Driver{},
		Assignments: models.Assignment{},
	}, nil
}

// valid reports whether a decoded document has the expected shape.
// Anything else is treated as corruption and triggers reinitialization.
func valid(doc *models.Document) bool {
	return doc != nil && len(doc.Admins) > 0 && doc.Drivers != nil && doc.Assignments != nil
}
