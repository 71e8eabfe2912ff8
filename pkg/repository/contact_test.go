package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/repository/memory"
)

func testContact(id types.ContactID, connID types.ConnectionID) *model.Contact {
	return &model.Contact{
		ID:            id,
		FullName:      "Ann A",
		Avatar:        model.DefaultAvatarURL,
		Email:         "ann@example.com",
		DisplayName:   "Ann A",
		Timezone:      "America/New_York",
		IsAdmin:       true,
		TeamID:        "T1",
		IntegrationID: types.ProviderSlack,
		ConnectionID:  connID,
	}
}

func runContactRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert creates and GetByID retrieves", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		contact := testContact("U1", "conn-1")
		if err := repo.Contact().Upsert(ctx, contact); err != nil {
			t.Fatalf("failed to upsert contact: %v", err)
		}

		retrieved, err := repo.Contact().GetByID(ctx, contact.ID)
		if err != nil {
			t.Fatalf("failed to get contact: %v", err)
		}
		if retrieved.FullName != "Ann A" {
			t.Errorf("expected fullName='Ann A', got %s", retrieved.FullName)
		}
		if retrieved.Avatar != model.DefaultAvatarURL {
			t.Errorf("expected placeholder avatar, got %s", retrieved.Avatar)
		}
		if !retrieved.IsAdmin {
			t.Error("expected isAdmin=true")
		}
		if retrieved.CreatedAt.IsZero() || retrieved.UpdatedAt.IsZero() {
			t.Error("expected non-zero timestamps")
		}
		if retrieved.Deleted() {
			t.Error("expected live contact")
		}
	})

	t.Run("Upsert of existing ID updates display fields, keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		contact := testContact("U2", "conn-1")
		if err := repo.Contact().Upsert(ctx, contact); err != nil {
			t.Fatalf("failed to upsert contact: %v", err)
		}
		first, err := repo.Contact().GetByID(ctx, contact.ID)
		if err != nil {
			t.Fatalf("failed to get contact: %v", err)
		}

		time.Sleep(10 * time.Millisecond)
		updated := testContact("U2", "conn-1")
		updated.FullName = "Ann B"
		updated.Email = "ann.b@example.com"
		updated.IsAdmin = false
		if err := repo.Contact().Upsert(ctx, updated); err != nil {
			t.Fatalf("failed to re-upsert contact: %v", err)
		}

		second, err := repo.Contact().GetByID(ctx, contact.ID)
		if err != nil {
			t.Fatalf("failed to get contact: %v", err)
		}
		if second.FullName != "Ann B" {
			t.Errorf("expected fullName='Ann B', got %s", second.FullName)
		}
		if second.Email != "ann.b@example.com" {
			t.Errorf("expected updated email, got %s", second.Email)
		}
		if second.IsAdmin {
			t.Error("expected isAdmin=false after update")
		}
		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("expected CreatedAt preserved, got %v then %v", first.CreatedAt, second.CreatedAt)
		}

		contacts, err := repo.Contact().ListByConnection(ctx, "conn-1")
		if err != nil {
			t.Fatalf("failed to list contacts: %v", err)
		}
		if len(contacts) != 1 {
			t.Errorf("expected 1 contact after double upsert, got %d", len(contacts))
		}
	})

	t.Run("ListByConnection filters by connection and excludes soft-deleted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if err := repo.Contact().Upsert(ctx, testContact("U1", "conn-1")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, testContact("U2", "conn-1")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, testContact("U3", "conn-2")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Contact().SoftDelete(ctx, "U2", time.Now()); err != nil {
			t.Fatalf("failed to soft-delete: %v", err)
		}

		contacts, err := repo.Contact().ListByConnection(ctx, "conn-1")
		if err != nil {
			t.Fatalf("failed to list contacts: %v", err)
		}
		if len(contacts) != 1 {
			t.Fatalf("expected 1 live contact on conn-1, got %d", len(contacts))
		}
		if contacts[0].ID != "U1" {
			t.Errorf("expected U1, got %s", contacts[0].ID)
		}
	})

	t.Run("SoftDelete sets only the deleted timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		contact := testContact("U4", "conn-1")
		if err := repo.Contact().Upsert(ctx, contact); err != nil {
			t.Fatalf("failed to upsert contact: %v", err)
		}
		before, err := repo.Contact().GetByID(ctx, contact.ID)
		if err != nil {
			t.Fatalf("failed to get contact: %v", err)
		}

		deletedAt := time.Now()
		if err := repo.Contact().SoftDelete(ctx, contact.ID, deletedAt); err != nil {
			t.Fatalf("failed to soft-delete: %v", err)
		}

		after, err := repo.Contact().GetByID(ctx, contact.ID)
		if err != nil {
			t.Fatalf("failed to get contact: %v", err)
		}
		if !after.Deleted() {
			t.Fatal("expected contact to be soft-deleted")
		}
		if after.FullName != before.FullName {
			t.Errorf("expected fullName untouched, got %s", after.FullName)
		}
		if after.Email != before.Email {
			t.Errorf("expected email untouched, got %s", after.Email)
		}
		if after.IsAdmin != before.IsAdmin {
			t.Error("expected isAdmin untouched")
		}
		if !after.CreatedAt.Equal(before.CreatedAt) {
			t.Errorf("expected CreatedAt untouched, got %v", after.CreatedAt)
		}
	})

	t.Run("SoftDelete tolerates missing contacts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if err := repo.Contact().SoftDelete(ctx, "no-such-contact", time.Now()); err != nil {
			t.Errorf("expected nil soft-deleting a missing contact, got %v", err)
		}
	})

	t.Run("DeleteByConnection removes all rows including soft-deleted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if err := repo.Contact().Upsert(ctx, testContact("U5", "conn-1")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, testContact("U6", "conn-1")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, testContact("U7", "conn-2")); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Contact().SoftDelete(ctx, "U6", time.Now()); err != nil {
			t.Fatalf("failed to soft-delete: %v", err)
		}

		if err := repo.Contact().DeleteByConnection(ctx, "conn-1"); err != nil {
			t.Fatalf("failed to delete by connection: %v", err)
		}

		if _, err := repo.Contact().GetByID(ctx, "U5"); !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("expected U5 gone, got %v", err)
		}
		if _, err := repo.Contact().GetByID(ctx, "U6"); !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("expected soft-deleted U6 gone, got %v", err)
		}
		if _, err := repo.Contact().GetByID(ctx, "U7"); err != nil {
			t.Errorf("expected U7 on conn-2 untouched, got %v", err)
		}
	})
}

func TestMemoryContactRepository(t *testing.T) {
	runContactRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreContactRepository(t *testing.T) {
	runContactRepositoryTest(t, newFirestoreRepository)
}
