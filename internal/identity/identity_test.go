package identity

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/db"
	"github.com/router-for-me/AppSubscriptions/internal/mail"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/resource"
	"github.com/router-for-me/AppSubscriptions/internal/store"
	"gorm.io/gorm"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

// seqRand returns values in order and then repeats the last one.
type seqRand struct {
	mu     sync.Mutex
	values []int
	calls  int
}

func (r *seqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[min(r.calls, len(r.values)-1)]
	r.calls++
	return v % n
}

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func newTestService(t *testing.T, opts Options) (*Service, *recordingSender, *gorm.DB) {
	t.Helper()
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "identity.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn, db.MigrateOptions{UniqueEmail: opts.UniqueEmail}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() {
		if sqlDB, errDB := conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})
	stores := store.New(conn)
	sender := &recordingSender{}
	return NewService(stores.Users, stores.Tokens, sender, opts), sender, conn
}

func TestUsernameBase(t *testing.T) {
	cases := []struct {
		txts []string
		want string
	}{
		{[]string{"Ana María", "ana@x.com"}, "ana_maria"},
		{[]string{"", "John.Doe+tag@Example.com"}, "john.doe+tag"},
		{[]string{"  ", "日本"}, FallbackUsername},
		{[]string{"Zoë   van  Dijk!"}, "zoe_van_dijk"},
		{nil, FallbackUsername},
	}
	for _, tc := range cases {
		if got := UsernameBase(tc.txts...); got != tc.want {
			t.Fatalf("UsernameBase(%q) = %q, want %q", tc.txts, got, tc.want)
		}
	}
}

func TestUsernameCandidates(t *testing.T) {
	candidates := UsernameCandidates("ana", 150, fixedRand(7))
	want := []string{"ana", "ana7", "ana07", "ana007", "ana0007", "ana00007", "ana000007"}
	if strings.Join(candidates, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected candidates %v", candidates)
	}

	long := UsernameCandidates(strings.Repeat("a", 10), 8, fixedRand(3))
	for _, candidate := range long {
		if len(candidate) > 8 {
			t.Fatalf("candidate %q exceeds max length", candidate)
		}
	}
	if long[1] != "aaaaaaa3" {
		t.Fatalf("expected suffix kept after truncation, got %q", long[1])
	}
}

func TestCleanEmail(t *testing.T) {
	if got := CleanEmail("  Ana@X.COM "); got != "ana@x.com" {
		t.Fatalf("CleanEmail = %q", got)
	}
}

func TestSignup(t *testing.T) {
	svc, sender, conn := newTestService(t, Options{UniqueEmail: true, ConfirmURL: "https://apps.example.com/confirm", Rand: fixedRand(1)})
	ctx := context.Background()

	user, errSignup := svc.Signup(ctx, resource.Signup{Name: "Ana", Email: "Ana@x.com", Password: "secret1"})
	if errSignup != nil {
		t.Fatalf("signup: %v", errSignup)
	}
	if user.ID == 0 || user.Username != "ana" || user.Email != "ana@x.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.Password == "secret1" || !strings.HasPrefix(user.Password, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", user.Password)
	}

	var address models.EmailAddress
	if errFind := conn.Where("user_id = ?", user.ID).First(&address).Error; errFind != nil {
		t.Fatalf("email address: %v", errFind)
	}
	if address.Verified || !address.Primary || len(address.ConfirmKey) != 64 {
		t.Fatalf("unexpected email address %+v", address)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].TextBody, "key="+address.ConfirmKey) {
		t.Fatalf("expected confirmation mail with key, got %+v", sender.sent)
	}

	_, errDup := svc.Signup(ctx, resource.Signup{Name: "Other", Email: "ana@x.com", Password: "secret2"})
	var appErr *apperr.Error
	if !errors.As(errDup, &appErr) || appErr.Kind != apperr.KindValidation || appErr.Fields["email"][0] != MsgEmailTaken {
		t.Fatalf("expected duplicate email error, got %v", errDup)
	}
	var count int64
	conn.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected no user created on duplicate, got %d users", count)
	}

	if errConfirm := svc.ConfirmEmail(ctx, address.ConfirmKey); errConfirm != nil {
		t.Fatalf("confirm: %v", errConfirm)
	}
	if errConfirm := svc.ConfirmEmail(ctx, "bogus"); !apperr.Is(errConfirm, apperr.KindNotFound) {
		t.Fatalf("expected not found for bogus key, got %v", errConfirm)
	}
}

func TestSignupUsernameCollision(t *testing.T) {
	svc, sender, _ := newTestService(t, Options{UniqueEmail: false, Rand: fixedRand(4)})
	sender.err = errors.New("smtp down")
	ctx := context.Background()

	first, errFirst := svc.Signup(ctx, resource.Signup{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	if errFirst != nil {
		t.Fatalf("first signup: %v", errFirst)
	}
	second, errSecond := svc.Signup(ctx, resource.Signup{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	if errSecond != nil {
		t.Fatalf("second signup with mail failure and shared email: %v", errSecond)
	}
	if first.Username != "ana" || second.Username != "ana4" {
		t.Fatalf("expected ana and ana4, got %q and %q", first.Username, second.Username)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t, Options{UniqueEmail: true})
	ctx := context.Background()
	if _, errSignup := svc.Signup(ctx, resource.Signup{Name: "Ana", Email: "ana@x.com", Password: "secret1"}); errSignup != nil {
		t.Fatalf("signup: %v", errSignup)
	}

	if _, _, errWrong := svc.Login(ctx, "ana@x.com", "wrong"); !apperr.Is(errWrong, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", errWrong)
	}
	if _, _, errUnknown := svc.Login(ctx, "bob@x.com", "secret1"); !apperr.Is(errUnknown, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for unknown user, got %v", errUnknown)
	}

	user, first, errLogin := svc.Login(ctx, "ana@x.com", "secret1")
	if errLogin != nil {
		t.Fatalf("login: %v", errLogin)
	}
	_, second, errLogin := svc.Login(ctx, "ana", "secret1")
	if errLogin != nil {
		t.Fatalf("login by username: %v", errLogin)
	}
	if first.Key != second.Key || len(first.Key) != 40 || first.UserID != user.ID {
		t.Fatalf("expected stable 40 char token, got %q and %q", first.Key, second.Key)
	}
}

func TestConcurrentSignupsShareOneEmail(t *testing.T) {
	svc, _, conn := newTestService(t, Options{UniqueEmail: true})
	ctx := context.Background()

	const signups = 8
	errs := make([]error, signups)
	var wg sync.WaitGroup
	for i := 0; i < signups; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Signup(ctx, resource.Signup{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, errSignup := range errs {
		if errSignup == nil {
			created++
			continue
		}
		var appErr *apperr.Error
		if !errors.As(errSignup, &appErr) || appErr.Kind != apperr.KindValidation || appErr.Fields["email"][0] != MsgEmailTaken {
			t.Fatalf("expected duplicate email field error, got %v", errSignup)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one signup to succeed, got %d", created)
	}
	var count int64
	conn.Model(&models.User{}).Where("LOWER(email) = ?", "ana@x.com").Count(&count)
	if count != 1 {
		t.Fatalf("expected one user with the email, got %d", count)
	}
}

func TestSignupDrawsNewUsernameSuffixes(t *testing.T) {
	rnd := &seqRand{values: []int{1, 1, 1, 1, 1, 1, 2}}
	svc, _, conn := newTestService(t, Options{Rand: rnd})
	for _, username := range UsernameCandidates("ana", 150, fixedRand(1)) {
		user := models.User{Username: username, Email: username + "@x.com", Password: "x", IsActive: true}
		if errCreate := conn.Create(&user).Error; errCreate != nil {
			t.Fatalf("create %s: %v", username, errCreate)
		}
	}

	user, errSignup := svc.Signup(context.Background(), resource.Signup{Name: "Ana", Email: "ana@y.com", Password: "secret1"})
	if errSignup != nil {
		t.Fatalf("signup: %v", errSignup)
	}
	if user.Username != "ana2" {
		t.Fatalf("expected a username from the second batch, got %q", user.Username)
	}
}
