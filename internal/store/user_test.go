package store

import (
	"testing"

	"github.com/google/uuid"
)

func newUserStores(t *testing.T) (*UserStore, *CategoryStore) {
	t.Helper()
	db := testDB(t)
	t.Cleanup(func() {
		cleanUsers(t, db,
			"jane@example.com", "john@example.com", "dup@example.com",
			"renamed@example.com", "contrib@example.com",
		)
		cleanCategories(t, db, "Test User Contrib")
	})
	return NewUserStore(db), NewCategoryStore(db)
}

func TestUserCreateAndFind(t *testing.T) {
	users, _ := newUserStores(t)

	created, err := users.Create("jane", "doe", "jane@example.com", "hello there")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.FirstName != "jane" || created.Email != "jane@example.com" {
		t.Errorf("unexpected user: %+v", created)
	}
	if len(created.Messages) != 1 || created.Messages[0].Content != "hello there" {
		t.Errorf("initial message missing: %+v", created.Messages)
	}

	byID, err := users.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Email != created.Email {
		t.Errorf("FindByID email = %q", byID.Email)
	}

	byEmail, err := users.FindByEmail("jane@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("FindByEmail id mismatch")
	}

	// Second registration with the same email is rejected.
	if _, err := users.Create("other", "person", "jane@example.com", ""); !IsCode(err, CodeInvalidInput) {
		t.Errorf("expected InvalidInput for duplicate email, got %v", err)
	}
}

func TestUserCreateWithoutMessage(t *testing.T) {
	users, _ := newUserStores(t)

	created, err := users.Create("john", "doe", "john@example.com", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(created.Messages))
	}
}

func TestUserUpdate(t *testing.T) {
	users, _ := newUserStores(t)

	created, err := users.Create("jane", "doe", "jane@example.com", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, err := users.Create("dup", "holder", "dup@example.com", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := users.Update(created.ID, "janet", "doe", "renamed@example.com")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FirstName != "janet" || updated.Email != "renamed@example.com" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	// Taking another user's email is rejected.
	if _, err := users.Update(created.ID, "janet", "doe", other.Email); !IsCode(err, CodeInvalidInput) {
		t.Errorf("expected InvalidInput, got %v", err)
	}

	// Keeping your own email is fine.
	if _, err := users.Update(created.ID, "janet", "doe", "renamed@example.com"); err != nil {
		t.Errorf("self-email update should succeed, got %v", err)
	}

	if _, err := users.Update(uuid.New(), "x", "y", "missing@example.com"); !IsCode(err, CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestUserDelete(t *testing.T) {
	users, _ := newUserStores(t)

	created, err := users.Create("john", "doe", "john@example.com", "bye")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := users.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted wrong user")
	}

	if _, err := users.FindByID(created.ID); !IsCode(err, CodeNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if _, err := users.Delete(created.ID); !IsCode(err, CodeNotFound) {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
}

func TestAppendMessage(t *testing.T) {
	users, _ := newUserStores(t)

	created, err := users.Create("jane", "doe", "jane@example.com", "first")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := users.AppendMessage(created.ID, "second")
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if len(updated.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(updated.Messages))
	}
	// Messages keep insertion order.
	if updated.Messages[0].Content != "first" || updated.Messages[1].Content != "second" {
		t.Errorf("unexpected order: %+v", updated.Messages)
	}

	if _, err := users.AppendMessage(uuid.New(), "x"); !IsCode(err, CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestRecordContribution(t *testing.T) {
	users, catalog := newUserStores(t)

	user, err := users.Create("contrib", "utor", "contrib@example.com", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cat, tool, err := catalog.AddContributedTool(
		"Test User Contrib", "their find", "desc", "https://find.example.com", "contrib utor",
	)
	if err != nil {
		t.Fatalf("AddContributedTool: %v", err)
	}

	if err := users.RecordContribution(user.ID, cat.ID, tool.ID); err != nil {
		t.Fatalf("RecordContribution: %v", err)
	}

	got, err := users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.AITools) != 1 {
		t.Fatalf("expected 1 contribution record, got %d", len(got.AITools))
	}
	rec := got.AITools[0]
	if rec.CategoryID != cat.ID || len(rec.ToolIDs) != 1 || rec.ToolIDs[0] != tool.ID {
		t.Errorf("unexpected contribution record: %+v", rec)
	}

	// A second tool in the same category folds into the same record.
	_, tool2, err := catalog.AddContributedTool(
		"Test User Contrib", "another find", "desc", "https://find2.example.com", "contrib utor",
	)
	if err != nil {
		t.Fatalf("AddContributedTool: %v", err)
	}
	if err := users.RecordContribution(user.ID, cat.ID, tool2.ID); err != nil {
		t.Fatalf("RecordContribution: %v", err)
	}

	got, err = users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.AITools) != 1 || len(got.AITools[0].ToolIDs) != 2 {
		t.Errorf("expected one record with two tools, got %+v", got.AITools)
	}
}
