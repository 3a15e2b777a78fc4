package identity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Resolution statuses. Unresolved is a resolver-side outcome only; the
// mapping table never stores UNRESOLVED rows.
const (
	StatusResolved   = "RESOLVED"
	StatusAmbiguous  = "AMBIGUOUS"
	StatusUnresolved = "UNRESOLVED"
)

// Resolution is the three-valued result of mapping a payroll name: resolved
// to a single user, ambiguous between candidates, or unresolved.
type Resolution struct {
	Status     string
	UserID     *uuid.UUID
	Candidates []uuid.UUID
}

func (r Resolution) Resolved() bool {
	return r.Status == StatusResolved && r.UserID != nil
}

// Normalize canonicalizes a free-text payroll name: trim, case-fold, map
// punctuation to spaces, collapse runs of whitespace.
func Normalize(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

//go:generate mockgen -source=resolver.go -destination=mock/resolver_mock.go -package=mock
type Resolver interface {
	Resolve(ctx context.Context, rawName string) (Resolution, error)
}

type resolver struct {
	repo Repository
}

func NewResolver(repo Repository) Resolver {
	return &resolver{repo: repo}
}

func (r *resolver) Resolve(ctx context.Context, rawName string) (Resolution, error) {
	normalized := Normalize(rawName)
	if normalized == "" {
		return Resolution{Status: StatusUnresolved}, nil
	}

	mapping, err := r.repo.FindByNormalizedName(ctx, normalized)
	if err != nil {
		return Resolution{}, err
	}
	if mapping == nil {
		return Resolution{Status: StatusUnresolved}, nil
	}

	if mapping.Status == MappingAmbiguous {
		var candidates []uuid.UUID
		if len(mapping.CandidatesJSON) > 0 {
			_ = json.Unmarshal(mapping.CandidatesJSON, &candidates)
		}
		return Resolution{Status: StatusAmbiguous, Candidates: candidates}, nil
	}

	return Resolution{Status: StatusResolved, UserID: mapping.UserID}, nil
}
