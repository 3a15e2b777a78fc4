package identity_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-payops/internal/identity"
)

func TestIdentityService_SyncMappings(t *testing.T) {
	ctx := context.Background()
	aliceID := uuid.New()
	alexID := uuid.New()

	employees := []identity.EmployeeRecord{
		{UserID: aliceID.String(), FullName: "Alice Johnson"},
		{UserID: alexID.String(), FullName: "Alex Johnson"},
	}

	t.Run("exact match resolves", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var stored *identity.PayrollIdentityMapping
		repo := &fakeIdentityRepository{
			upsertFn: func(ctx context.Context, mapping *identity.PayrollIdentityMapping) error {
				stored = mapping
				return nil
			},
		}

		resp, err := identity.NewService(db, repo).SyncMappings(ctx, identity.SyncMappingsRequest{
			Names:     []string{"alice johnson"},
			Employees: employees,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.ResolvedCount)
		assert.NotNil(t, stored)
		assert.Equal(t, identity.MappingResolved, stored.Status)
		assert.Equal(t, aliceID, *stored.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("prefix match requires a word boundary", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var stored *identity.PayrollIdentityMapping
		repo := &fakeIdentityRepository{
			upsertFn: func(ctx context.Context, mapping *identity.PayrollIdentityMapping) error {
				stored = mapping
				return nil
			},
		}

		// "alice" prefixes "alice johnson" at a word boundary; it must not
		// match "alex johnson".
		resp, err := identity.NewService(db, repo).SyncMappings(ctx, identity.SyncMappingsRequest{
			Names:     []string{"Alice"},
			Employees: employees,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.ResolvedCount)
		assert.Equal(t, aliceID, *stored.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("multiple matches stored ambiguous", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var stored *identity.PayrollIdentityMapping
		repo := &fakeIdentityRepository{
			upsertFn: func(ctx context.Context, mapping *identity.PayrollIdentityMapping) error {
				stored = mapping
				return nil
			},
		}

		both := []identity.EmployeeRecord{
			{UserID: aliceID.String(), FullName: "Jordan Smith"},
			{UserID: alexID.String(), FullName: "Jordan Smithson"},
		}
		resp, err := identity.NewService(db, repo).SyncMappings(ctx, identity.SyncMappingsRequest{
			Names:     []string{"Jordan"},
			Employees: both,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.AmbiguousCount)
		assert.Equal(t, identity.MappingAmbiguous, stored.Status)
		assert.Nil(t, stored.UserID)
		assert.NotEmpty(t, stored.CandidatesJSON)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match reported unmatched", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		repo := &fakeIdentityRepository{
			upsertFn: func(ctx context.Context, mapping *identity.PayrollIdentityMapping) error {
				t.Fatal("unmatched name must not be stored")
				return nil
			},
		}

		resp, err := identity.NewService(db, repo).SyncMappings(ctx, identity.SyncMappingsRequest{
			Names:     []string{"Totally Unknown"},
			Employees: employees,
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"Totally Unknown"}, resp.Unmatched)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing resolved mapping is never overwritten", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		repo := &fakeIdentityRepository{
			findByNormalizedNameFn: func(ctx context.Context, normalized string) (*identity.PayrollIdentityMapping, error) {
				return &identity.PayrollIdentityMapping{
					NormalizedName: normalized,
					UserID:         &alexID,
					Status:         identity.MappingResolved,
				}, nil
			},
			upsertFn: func(ctx context.Context, mapping *identity.PayrollIdentityMapping) error {
				t.Fatal("resolved mapping must not be overwritten")
				return nil
			},
		}

		resp, err := identity.NewService(db, repo).SyncMappings(ctx, identity.SyncMappingsRequest{
			Names:     []string{"Alice Johnson"},
			Employees: employees,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.SkippedCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
