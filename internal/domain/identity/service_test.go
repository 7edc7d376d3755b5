package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockUserRepo struct {
	store map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{store: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.store {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.store[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.store {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, "test-secret", time.Hour), repo
}

func TestRegister_DefaultsToPatient(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "correcthorse",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Role != "patient" {
		t.Errorf("expected patient role, got %s", resp.User.Role)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.PasswordHash == "correcthorse" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Password: "correcthorse", Name: "A"}},
		{"bad email", RegisterInput{Email: "nope", Password: "correcthorse", Name: "A"}},
		{"short password", RegisterInput{Email: "a@b.com", Password: "short", Name: "A"}},
		{"missing name", RegisterInput{Email: "a@b.com", Password: "correcthorse"}},
		{"bad role", RegisterInput{Email: "a@b.com", Password: "correcthorse", Name: "A", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	in := RegisterInput{Email: "bob@example.com", Password: "correcthorse", Name: "Bob"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	in.Email = "BOB@example.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "carol@example.com", Password: "correcthorse", Name: "Carol",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginInput{
		Email: "carol@example.com", Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}

	if _, err := svc.Login(context.Background(), LoginInput{
		Email: "carol@example.com", Password: "wrong",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "correcthorse",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.Register(context.Background(), RegisterInput{
		Email: "dan@example.com", Password: "correcthorse", Name: "Dan",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	u, err := svc.Validate(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if u.Email != "dan@example.com" {
		t.Errorf("unexpected user %s", u.Email)
	}

	delete(repo.store, resp.User.ID)
	if _, err := svc.Validate(context.Background(), resp.User.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
