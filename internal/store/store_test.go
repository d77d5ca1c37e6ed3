package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/db"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"gorm.io/gorm"
)

func openTestStores(t *testing.T) (*gorm.DB, *Stores) {
	t.Helper()
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "store.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn, db.MigrateOptions{UniqueEmail: true}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() {
		if sqlDB, errDB := conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})
	return conn, New(conn)
}

func createUser(t *testing.T, stores *Stores, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Name: username, Email: email, Password: "x", IsActive: true}
	if errCreate := stores.Users.Create(context.Background(), user); errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func createPlan(t *testing.T, conn *gorm.DB, name string) *models.Plan {
	t.Helper()
	plan := &models.Plan{Name: name, Description: name, Price: 999}
	if errCreate := conn.Create(plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	return plan
}

func TestUserStoreLookups(t *testing.T) {
	_, stores := openTestStores(t)
	ctx := context.Background()
	user := createUser(t, stores, "ana", "ana@x.com")

	byEmail, errLogin := stores.Users.GetByLogin(ctx, "ANA@x.com")
	if errLogin != nil || byEmail.ID != user.ID {
		t.Fatalf("expected login by email, got %v %v", byEmail, errLogin)
	}
	byName, errLogin := stores.Users.GetByLogin(ctx, "ana")
	if errLogin != nil || byName.ID != user.ID {
		t.Fatalf("expected login by username, got %v %v", byName, errLogin)
	}
	if _, errMissing := stores.Users.GetByLogin(ctx, "bob"); !apperr.Is(errMissing, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", errMissing)
	}

	exists, errExists := stores.Users.EmailExists(ctx, " Ana@X.com ")
	if errExists != nil || !exists {
		t.Fatalf("expected email to exist, got %v %v", exists, errExists)
	}

	taken, errTaken := stores.Users.UsernamesTaken(ctx, []string{"ana", "ANA", "ana1"})
	if errTaken != nil {
		t.Fatalf("usernames taken: %v", errTaken)
	}
	if _, ok := taken["ana"]; !ok || len(taken) != 1 {
		t.Fatalf("expected only ana taken, got %v", taken)
	}

	dup := &models.User{Username: "ana", Email: "other@x.com", Password: "x"}
	if errDup := stores.Users.Create(ctx, dup); !db.IsUniqueViolation(errDup) {
		t.Fatalf("expected unique violation, got %v", errDup)
	}
}

func TestUserStoreConfirmEmail(t *testing.T) {
	conn, stores := openTestStores(t)
	ctx := context.Background()
	user := &models.User{Username: "ana", Email: "ana@x.com", Password: "x", IsActive: true}
	address := &models.EmailAddress{Email: user.Email, Primary: true, ConfirmKey: "k1"}
	if errCreate := stores.Users.CreateWithEmail(ctx, user, address); errCreate != nil {
		t.Fatalf("create with email: %v", errCreate)
	}
	if address.UserID != user.ID || user.ID == 0 {
		t.Fatalf("expected address bound to user, got %+v", address)
	}

	clash := &models.User{Username: "ana", Email: "b@x.com", Password: "x"}
	if errClash := stores.Users.CreateWithEmail(ctx, clash, &models.EmailAddress{Email: "b@x.com", ConfirmKey: "k2"}); !db.IsUniqueViolation(errClash) {
		t.Fatalf("expected unique violation, got %v", errClash)
	}
	var count int64
	if errCount := conn.Model(&models.EmailAddress{}).Count(&count).Error; errCount != nil || count != 1 {
		t.Fatalf("expected rolled back address, got %d %v", count, errCount)
	}
	confirmed, errConfirm := stores.Users.ConfirmEmail(ctx, "k1")
	if errConfirm != nil || !confirmed.Verified {
		t.Fatalf("expected verified address, got %v %v", confirmed, errConfirm)
	}
	if _, errMissing := stores.Users.ConfirmEmail(ctx, "nope"); !apperr.Is(errMissing, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", errMissing)
	}
}

func TestTokenStoreGetOrCreateIsIdempotent(t *testing.T) {
	_, stores := openTestStores(t)
	ctx := context.Background()
	user := createUser(t, stores, "ana", "ana@x.com")

	keys := []string{"key-one", "key-two"}
	next := func() (string, error) {
		key := keys[0]
		keys = keys[1:]
		return key, nil
	}
	first, errFirst := stores.Tokens.GetOrCreate(ctx, user.ID, next)
	if errFirst != nil {
		t.Fatalf("first: %v", errFirst)
	}
	second, errSecond := stores.Tokens.GetOrCreate(ctx, user.ID, next)
	if errSecond != nil {
		t.Fatalf("second: %v", errSecond)
	}
	if first.Key != "key-one" || second.Key != first.Key {
		t.Fatalf("expected the same token twice, got %q and %q", first.Key, second.Key)
	}

	owner, errOwner := stores.Tokens.UserForKey(ctx, "key-one")
	if errOwner != nil || owner.ID != user.ID {
		t.Fatalf("expected token owner, got %v %v", owner, errOwner)
	}
	if _, errMissing := stores.Tokens.UserForKey(ctx, ""); !apperr.Is(errMissing, apperr.KindNotFound) {
		t.Fatalf("expected not found for empty key, got %v", errMissing)
	}
}

func TestTokenStoreConcurrentCreate(t *testing.T) {
	_, stores := openTestStores(t)
	ctx := context.Background()
	user := createUser(t, stores, "ana", "ana@x.com")

	var mu sync.Mutex
	counter := 0
	next := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return "key-" + string(rune('a'+counter)), nil
	}

	const workers = 4
	results := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, errToken := stores.Tokens.GetOrCreate(ctx, user.ID, next)
			if errToken != nil {
				errs[i] = errToken
				return
			}
			results[i] = token.Key
		}(i)
	}
	wg.Wait()
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("expected one token, got %v", results)
		}
	}
}

func TestAppStoreOwnership(t *testing.T) {
	conn, stores := openTestStores(t)
	ctx := context.Background()
	owner := createUser(t, stores, "ana", "ana@x.com")
	other := createUser(t, stores, "bob", "bob@x.com")

	app := &models.App{Name: "MyApp", Type: models.AppTypeWeb, Framework: models.AppFrameworkDjango, UserID: owner.ID}
	if errCreate := stores.Apps.Create(ctx, app); errCreate != nil {
		t.Fatalf("create app: %v", errCreate)
	}
	if _, errGet := stores.Apps.Get(ctx, app.ID, other.ID); !apperr.Is(errGet, apperr.KindNotFound) {
		t.Fatalf("expected not found for other user, got %v", errGet)
	}

	app.Name = "Renamed"
	app.Description = ""
	updated, errUpdate := stores.Apps.Update(ctx, app)
	if errUpdate != nil || updated.Name != "Renamed" {
		t.Fatalf("update: %v %v", updated, errUpdate)
	}
	foreign := *app
	foreign.UserID = other.ID
	if _, errForeign := stores.Apps.Update(ctx, &foreign); !apperr.Is(errForeign, apperr.KindNotFound) {
		t.Fatalf("expected not found updating other user's app, got %v", errForeign)
	}

	apps, errList := stores.Apps.ListByUser(ctx, other.ID)
	if errList != nil || len(apps) != 0 {
		t.Fatalf("expected no apps for other user, got %v %v", apps, errList)
	}

	plan := createPlan(t, conn, "Basic")
	sub := &models.Subscription{UserID: owner.ID, PlanID: plan.ID, AppID: app.ID, Active: true}
	if errSub := stores.Subscriptions.Create(ctx, sub); errSub != nil {
		t.Fatalf("create subscription: %v", errSub)
	}

	if errDelete := stores.Apps.Delete(ctx, app.ID, other.ID); !apperr.Is(errDelete, apperr.KindNotFound) {
		t.Fatalf("expected not found deleting other user's app, got %v", errDelete)
	}
	if errDelete := stores.Apps.Delete(ctx, app.ID, owner.ID); errDelete != nil {
		t.Fatalf("delete: %v", errDelete)
	}
	if errDelete := stores.Apps.Delete(ctx, app.ID, owner.ID); !apperr.Is(errDelete, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", errDelete)
	}
	if _, errSub := stores.Subscriptions.Get(ctx, sub.ID, owner.ID); !apperr.Is(errSub, apperr.KindNotFound) {
		t.Fatalf("expected subscription removed with its app, got %v", errSub)
	}
}

func TestSubscriptionStore(t *testing.T) {
	conn, stores := openTestStores(t)
	ctx := context.Background()
	owner := createUser(t, stores, "ana", "ana@x.com")
	basic := createPlan(t, conn, "Basic")
	pro := createPlan(t, conn, "Pro")
	app := &models.App{Name: "MyApp", Type: models.AppTypeWeb, Framework: models.AppFrameworkDjango, UserID: owner.ID}
	if errCreate := stores.Apps.Create(ctx, app); errCreate != nil {
		t.Fatalf("create app: %v", errCreate)
	}

	if _, errMissing := stores.Subscriptions.GetByApp(ctx, app.ID, owner.ID); !apperr.Is(errMissing, apperr.KindNotFound) {
		t.Fatalf("expected not found before create, got %v", errMissing)
	}

	sub := &models.Subscription{UserID: owner.ID, PlanID: basic.ID, AppID: app.ID, Active: false}
	if errCreate := stores.Subscriptions.Create(ctx, sub); errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}
	byApp, errByApp := stores.Subscriptions.GetByApp(ctx, app.ID, owner.ID)
	if errByApp != nil || byApp.ID != sub.ID {
		t.Fatalf("get by app: %v %v", byApp, errByApp)
	}
	if byApp.Active {
		t.Fatalf("expected inactive subscription to stay inactive")
	}

	sub.PlanID = pro.ID
	sub.Active = true
	updated, errUpdate := stores.Subscriptions.Update(ctx, sub)
	if errUpdate != nil || updated.PlanID != pro.ID || !updated.Active {
		t.Fatalf("update: %v %v", updated, errUpdate)
	}

	subs, errList := stores.Subscriptions.ListByUser(ctx, owner.ID)
	if errList != nil || len(subs) != 1 {
		t.Fatalf("list: %v %v", subs, errList)
	}

	exists, errExists := stores.Plans.Exists(ctx, pro.ID)
	if errExists != nil || !exists {
		t.Fatalf("expected plan to exist, got %v %v", exists, errExists)
	}
	plans, errPlans := stores.Plans.List(ctx)
	if errPlans != nil || len(plans) != 2 || plans[0].Name != "Basic" || plans[0].Price != 999 {
		t.Fatalf("plans: %+v %v", plans, errPlans)
	}
	if _, errPlan := stores.Plans.Get(ctx, 999); !apperr.Is(errPlan, apperr.KindNotFound) {
		t.Fatalf("expected plan not found, got %v", errPlan)
	}
}
