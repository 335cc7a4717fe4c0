package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stockroom/stockroom/internal/model"
)

const testSecret = "test-signing-secret-0123456789ab"

func testUser() *model.User {
	return &model.User{
		ID:    "01HZXCV0000000000000000000",
		Name:  "Ada",
		Email: "ada@example.com",
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 2*time.Hour)
	user := testUser()

	tests := []struct {
		name  string
		issue func(*model.User) (string, error)
	}{
		{"signup token", svc.IssueSignup},
		{"login token", svc.IssueLogin},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := tt.issue(user)
			if err != nil {
				t.Fatalf("issue failed: %v", err)
			}
			if token == "" {
				t.Fatal("issued token should not be empty")
			}

			id, err := svc.Verify(token)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if id != user.ID {
				t.Errorf("Verify returned %q, want %q", id, user.ID)
			}
		})
	}
}

func TestTokenService_ClaimShapesVerifyIdentically(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 2*time.Hour)
	user := testUser()

	signupToken, err := svc.IssueSignup(user)
	if err != nil {
		t.Fatalf("IssueSignup failed: %v", err)
	}
	loginToken, err := svc.IssueLogin(user)
	if err != nil {
		t.Fatalf("IssueLogin failed: %v", err)
	}

	signupID, err := svc.Verify(signupToken)
	if err != nil {
		t.Fatalf("Verify(signup) failed: %v", err)
	}
	loginID, err := svc.Verify(loginToken)
	if err != nil {
		t.Fatalf("Verify(login) failed: %v", err)
	}

	if signupID != loginID {
		t.Errorf("both claim shapes should resolve to the same user: %q vs %q", signupID, loginID)
	}
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 2*time.Hour)
	user := testUser()

	token, err := svc.IssueLogin(user)
	if err != nil {
		t.Fatalf("IssueLogin failed: %v", err)
	}

	// Move the clock past the two hour lifetime
	svc.now = func() time.Time { return time.Now().Add(3 * time.Hour) }

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenService_Tampered(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 2*time.Hour)
	user := testUser()

	token, err := svc.IssueLogin(user)
	if err != nil {
		t.Fatalf("IssueLogin failed: %v", err)
	}

	// Flip a character in the payload segment
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token should have 3 segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = svc.Verify(tampered)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService(testSecret, 2*time.Hour)
	verifier := NewTokenService("a-completely-different-secret-xyz", 2*time.Hour)

	token, err := issuer.IssueSignup(testUser())
	if err != nil {
		t.Fatalf("IssueSignup failed: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 2*time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a token", "not-a-token"},
		{"two segments", "abc.def"},
		{"garbage segments", "a.b.c"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Verify(%q) error = %v, want ErrTokenInvalid", tt.token, err)
			}
		})
	}
}

func TestTokenService_MissingClaim(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 2*time.Hour)

	// A structurally valid token with neither claim shape
	token, err := svc.sign(svc.baseClaims())
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}
