package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=identity_service.go -destination=mock/identity_service_mock.go -package=mock
type Service interface {
	SyncMappings(ctx context.Context, req SyncMappingsRequest) (SyncMappingsResponse, error)
	ListMappings(ctx context.Context) ([]MappingResponse, error)
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

// SyncMappings fuzzy-matches a batch of payroll names against the canonical
// employee list: exact normalized match first, then a unique-prefix
// heuristic. Names matching multiple candidates are stored AMBIGUOUS; names
// matching none are left unmapped. Existing RESOLVED mappings are never
// overwritten or deleted.
func (s *service) SyncMappings(ctx context.Context, req SyncMappingsRequest) (SyncMappingsResponse, error) {
	type candidate struct {
		userID     uuid.UUID
		normalized string
	}
	candidates := make([]candidate, 0, len(req.Employees))
	for _, emp := range req.Employees {
		uid, err := uuid.Parse(emp.UserID)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{userID: uid, normalized: Normalize(emp.FullName)})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncMappingsResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	var resp SyncMappingsResponse
	seen := make(map[string]struct{})

	for _, raw := range req.Names {
		normalized := Normalize(raw)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		existing, err := qtx.FindByNormalizedName(ctx, normalized)
		if err != nil {
			return SyncMappingsResponse{}, err
		}
		if existing != nil && existing.Status == MappingResolved {
			resp.SkippedCount++
			continue
		}

		var exact, prefix []uuid.UUID
		for _, c := range candidates {
			switch {
			case c.normalized == normalized:
				exact = append(exact, c.userID)
			case strings.HasPrefix(c.normalized, normalized+" "),
				strings.HasPrefix(normalized, c.normalized+" "):
				prefix = append(prefix, c.userID)
			}
		}

		matches := exact
		if len(matches) == 0 {
			matches = prefix
		}

		switch len(matches) {
		case 0:
			resp.Unmatched = append(resp.Unmatched, raw)
		case 1:
			userID := matches[0]
			if err := qtx.Upsert(ctx, &PayrollIdentityMapping{
				ID:             uuid.New(),
				NormalizedName: normalized,
				UserID:         &userID,
				Status:         MappingResolved,
			}); err != nil {
				return SyncMappingsResponse{}, err
			}
			resp.ResolvedCount++
		default:
			candidatesJSON, _ := json.Marshal(matches)
			if err := qtx.Upsert(ctx, &PayrollIdentityMapping{
				ID:             uuid.New(),
				NormalizedName: normalized,
				Status:         MappingAmbiguous,
				CandidatesJSON: candidatesJSON,
			}); err != nil {
				return SyncMappingsResponse{}, err
			}
			resp.AmbiguousCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return SyncMappingsResponse{}, err
	}

	return resp, nil
}

func (s *service) ListMappings(ctx context.Context) ([]MappingResponse, error) {
	mappings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]MappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = MappingResponse{
			NormalizedName: m.NormalizedName,
			Status:         m.Status,
		}
		if m.UserID != nil {
			v := m.UserID.String()
			resp[i].UserID = &v
		}
	}
	return resp, nil
}
