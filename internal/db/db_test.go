package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/router-for-me/AppSubscriptions/internal/config"
	"github.com/router-for-me/AppSubscriptions/internal/models"
)

func testDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "appsubs-test.db")
}

func TestIsPostgresDSN(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@localhost:5432/apps":        true,
		"postgresql://localhost/apps":               true,
		"host=localhost user=apps dbname=apps":      true,
		"file:apps.db":                              false,
		"apps.db":                                   false,
		"file:/tmp/apps.db?_pragma=foreign_keys(1)": false,
	}
	for dsn, want := range cases {
		if got := IsPostgresDSN(dsn); got != want {
			t.Fatalf("IsPostgresDSN(%q): expected %v, got %v", dsn, want, got)
		}
		if want != (DialectFor(dsn) == Postgres) {
			t.Fatalf("DialectFor(%q) = %q disagrees with IsPostgresDSN", dsn, DialectFor(dsn))
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("apps.db")
	if !strings.HasPrefix(dsn, "file:apps.db?") {
		t.Fatalf("expected file: prefix with params, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=foreign_keys(1)") {
		t.Fatalf("expected foreign_keys pragma, got %q", dsn)
	}

	custom := SQLiteDSN("file:apps.db?_pragma=foreign_keys(0)")
	if strings.Count(custom, "foreign_keys") != 1 {
		t.Fatalf("expected explicit pragma to be kept once, got %q", custom)
	}
}

func TestMigrateAndSeedPlans(t *testing.T) {
	conn, err := Open(testDSN(t))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if got := DialectOf(conn); got != SQLite {
		t.Fatalf("expected sqlite dialect, got %q", got)
	}
	if errMigrate := Migrate(conn, MigrateOptions{UniqueEmail: true}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	seeds := []config.PlanSeed{
		{Name: "Basic", Description: "Starter", Price: "9.99"},
		{Name: "Pro", Description: "Everything", Price: "49"},
	}
	created, err := SeedPlans(conn, seeds)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 plans created, got %d", created)
	}
	created, err = SeedPlans(conn, seeds)
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected seeding to be idempotent, got %d created", created)
	}

	var plan models.Plan
	if errFind := conn.Where("name = ?", "Basic").First(&plan).Error; errFind != nil {
		t.Fatalf("find plan: %v", errFind)
	}
	if plan.Price != 999 {
		t.Fatalf("expected price 999 cents, got %d", plan.Price)
	}
}

func TestSeedPlansRejectsBadPrice(t *testing.T) {
	conn, err := Open(testDSN(t))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn, MigrateOptions{UniqueEmail: true}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	if _, errSeed := SeedPlans(conn, []config.PlanSeed{{Name: "Odd", Price: "1.999"}}); errSeed == nil {
		t.Fatalf("expected error for price with three decimals")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	conn, err := Open(testDSN(t))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn, MigrateOptions{UniqueEmail: true}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	first := models.User{Username: "ana", Email: "ana@x.com", Password: "hash", IsActive: true}
	if errCreate := conn.Create(&first).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	dup := models.User{Username: "ana", Email: "other@x.com", Password: "hash", IsActive: true}
	errDup := conn.Create(&dup).Error
	if errDup == nil {
		t.Fatalf("expected duplicate username to fail")
	}
	if !IsUniqueViolation(errDup) {
		t.Fatalf("expected unique violation, got %v", errDup)
	}
	if IsUniqueViolation(nil) {
		t.Fatalf("nil error is not a unique violation")
	}
}

func TestCascadeDeleteUser(t *testing.T) {
	conn, err := Open(testDSN(t))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn, MigrateOptions{UniqueEmail: true}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Username: "ana", Email: "ana@x.com", Password: "hash", IsActive: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	plan := models.Plan{Name: "Basic", Description: "Starter", Price: 999}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	app := models.App{Name: "MyApp", Type: models.AppTypeWeb, Framework: models.AppFrameworkDjango, UserID: user.ID}
	if errCreate := conn.Create(&app).Error; errCreate != nil {
		t.Fatalf("create app: %v", errCreate)
	}
	sub := models.Subscription{UserID: user.ID, PlanID: plan.ID, AppID: app.ID, Active: true}
	if errCreate := conn.Create(&sub).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	if errDelete := conn.Delete(&models.User{}, user.ID).Error; errDelete != nil {
		t.Fatalf("delete user: %v", errDelete)
	}

	var apps, subs int64
	conn.Model(&models.App{}).Count(&apps)
	conn.Model(&models.Subscription{}).Count(&subs)
	if apps != 0 || subs != 0 {
		t.Fatalf("expected cascade delete, got apps=%d subscriptions=%d", apps, subs)
	}
}

func TestMigrateEmailIndex(t *testing.T) {
	conn, err := Open(testDSN(t))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn, MigrateOptions{UniqueEmail: true}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	users := []models.User{
		{Username: "ana", Email: "ana@x.com", Password: "hash"},
		{Username: "blank1", Email: "", Password: "hash"},
		{Username: "blank2", Email: "", Password: "hash"},
	}
	for i := range users {
		if errCreate := conn.Create(&users[i]).Error; errCreate != nil {
			t.Fatalf("create %s: %v", users[i].Username, errCreate)
		}
	}
	caseVariant := models.User{Username: "ana2", Email: "ANA@x.com", Password: "hash"}
	if errDup := conn.Create(&caseVariant).Error; !IsUniqueViolation(errDup) {
		t.Fatalf("expected case-insensitive duplicate email rejected, got %v", errDup)
	}

	if errMigrate := Migrate(conn, MigrateOptions{}); errMigrate != nil {
		t.Fatalf("migrate without unique email: %v", errMigrate)
	}
	shared := models.User{Username: "ana3", Email: "ana@x.com", Password: "hash"}
	if errCreate := conn.Create(&shared).Error; errCreate != nil {
		t.Fatalf("expected shared email allowed once uniqueness is off, got %v", errCreate)
	}
}
