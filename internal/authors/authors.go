// Package authors resolves author references to display summaries,
// substituting a placeholder for references that no longer resolve.
package authors

import (
	"context"

	"blog-platform/internal/models"

	"github.com/google/uuid"
)

// Lookup fetches the users that exist among ids. Missing ids are simply absent from the result.
type Lookup interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
}

type Resolver struct {
	users Lookup
}

func NewResolver(users Lookup) *Resolver {
	return &Resolver{users: users}
}

// Resolve loads every distinct id in one query and returns a Directory over the result.
func (r *Resolver) Resolve(ctx context.Context, ids []uuid.UUID) (*Directory, error) {
	distinct := dedupe(ids)
	dir := &Directory{found: make(map[uuid.UUID]*models.User, len(distinct))}
	if len(distinct) == 0 {
		return dir, nil
	}

	users, err := r.users.GetUsersByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		dir.found[u.ID] = u
	}
	return dir, nil
}

// Directory is a read-only snapshot of resolved authors.
type Directory struct {
	found map[uuid.UUID]*models.User
}

// Author never returns an empty summary; unresolved ids map to the deleted-user placeholder.
func (d *Directory) Author(id uuid.UUID) models.AuthorSummary {
	if u, ok := d.found[id]; ok {
		return models.SummaryOf(u)
	}
	return models.DeletedAuthor()
}

func (d *Directory) Exists(id uuid.UUID) bool {
	_, ok := d.found[id]
	return ok
}

// Missing returns the distinct ids that did not resolve, in first-seen order.
func (d *Directory) Missing(ids []uuid.UUID) []uuid.UUID {
	var missing []uuid.UUID
	for _, id := range dedupe(ids) {
		if !d.Exists(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
