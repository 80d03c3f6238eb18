package database

import (
	"context"
	"testing"
	"testing/fstest"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestPersistentModels_IncludesDomainEntities(t *testing.T) {
	var sawFollow, sawGroup bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.Follow:
			sawFollow = true
		case *models.Group:
			sawGroup = true
		}
	}
	require.True(t, sawFollow, "PersistentModels should include Follow")
	require.True(t, sawGroup, "PersistentModels should include Group")
}

func TestEmbeddedMigrations_Registered(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init_schema", all[0].Name)
	assert.Contains(t, all[0].UpScript, "ON DELETE CASCADE")
	assert.Contains(t, all[0].UpScript, "ON DELETE SET NULL")
	assert.Contains(t, all[0].UpScript, "chk_follows_not_self")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS follows")
	assert.Equal(t, "000001_init_schema", all[0].String())

	require.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations_OrdersAndSkipsInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"m/000002_second.down.sql": {Data: []byte("SELECT -2;")},
		"m/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"m/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"m/000003_third.down.sql":  {Data: []byte("SELECT -3;")},
		"m/noversion.up.sql":       {Data: []byte("SELECT 0;")},
		"m/README.md":              {Data: []byte("docs")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
}

func TestLoadMigrations_MissingDownScript(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_first.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		env      string
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid dev", "hybrid", "development", true, true, false},
		{"hybrid prod", "hybrid", "production", true, false, false},
		{"empty mode defaults to hybrid", "", "test", true, true, false},
		{"sql only", "sql", "development", true, false, false},
		{"auto dev", "auto", "development", false, true, false},
		{"auto refused in staging", "auto", "staging", false, false, true},
		{"unknown mode", "magic", "development", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planSchema(&config.Config{DBSchemaMode: tt.mode, Env: tt.env})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.SQL)
			assert.Equal(t, tt.wantAuto, plan.Auto)
		})
	}
}

func TestRunMigrations_AppliesPendingOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY);", DownScript: "DROP TABLE widgets;"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY);", DownScript: "DROP TABLE gadgets;"},
	}

	require.NoError(t, runMigrations(ctx, db, registered))
	require.NoError(t, runMigrations(ctx, db, registered))

	applied, err := NewMigrationStore(db).Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, appliedVersions(applied))
	assert.Equal(t, registered[0].Checksum(), applied[0].Checksum)
	assert.True(t, db.Migrator().HasTable("gadgets"))
}

func TestRunMigrations_RejectsUnknownAppliedVersion(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&AppliedMigration{}))
	require.NoError(t, db.Create(&AppliedMigration{Version: 42, Name: "ghost"}).Error)

	err := runMigrations(ctx, db, []Migration{{Version: 1, Name: "one", UpScript: "SELECT 1;"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestRunMigrations_RejectsEditedScript(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	original := []Migration{{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY);"}}
	require.NoError(t, runMigrations(ctx, db, original))

	edited := []Migration{{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT);"}}
	err := runMigrations(ctx, db, edited)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_widgets")
}

func TestMigrationStore_RevertIsTransactional(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	m := Migration{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY);", DownScript: "DROP TABLE widgets;"}
	require.NoError(t, runMigrations(ctx, db, []Migration{m}))

	store := NewMigrationStore(db)
	broken := m
	broken.DownScript = "DROP TABLE no_such_table;"
	require.Error(t, store.Revert(ctx, broken))
	applied, err := store.Applied(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)

	require.NoError(t, store.Revert(ctx, m))
	applied, err = store.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.False(t, db.Migrator().HasTable("widgets"))
}

func TestGetSchemaStatus_ListsPending(t *testing.T) {
	db := openSQLite(t)
	status, err := GetSchemaStatus(context.Background(), db, &config.Config{DBSchemaMode: "sql", Env: "test"})
	require.NoError(t, err)
	assert.True(t, status.WillRunSQL)
	assert.False(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.AppliedVersions)
	assert.Len(t, status.PendingMigrations, len(GetMigrations()))
}

func TestAutoMigrate_CreatesConstraints(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasConstraint(&models.Post{}, "fk_posts_author"))
	assert.True(t, db.Migrator().HasConstraint(&models.Follow{}, "chk_follows_not_self"))
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follows_user_author"))
}

func TestStatementKind(t *testing.T) {
	tests := map[string]string{
		`SELECT * FROM "posts"`:                     "select",
		"  insert into follows (user_id) values (1)": "insert",
		"WITH page AS (SELECT 1) SELECT * FROM page": "with",
		"PRAGMA foreign_keys = ON":                   "other",
		"":                                           "unknown",
	}
	for sql, want := range tests {
		assert.Equal(t, want, statementKind(sql), sql)
	}
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "quill", DBPassword: "pw", DBName: "blog"}
	assert.Equal(t, "host=db port=5432 user=quill password=pw dbname=blog sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "verify-full"
	assert.Contains(t, DSN(cfg), "sslmode=verify-full")
}
