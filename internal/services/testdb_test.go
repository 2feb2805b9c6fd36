package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.Workspace{},
		&models.Team{},
		&models.Member{},
		&models.Channel{},
		&models.AgentAssignment{},
		&models.Thread{},
		&models.Message{},
		&models.Attachment{},
		&models.Reaction{},
		&models.Project{},
		&models.Phase{},
		&models.Artifact{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testFixture is a minimal workspace graph for thread and message tests:
// one team of the given kind, one member for userID, one public channel.
type testFixture struct {
	workspace models.Workspace
	team      models.Team
	member    models.Member
	channel   models.Channel
}

func seedWorkspace(t *testing.T, db *gorm.DB, kind models.TeamKind, userID uint) *testFixture {
	t.Helper()

	f := &testFixture{}
	f.workspace = models.Workspace{ProjectID: 1, Name: "Acme Rebrand", CreatedBy: userID}
	if err := db.Create(&f.workspace).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	f.team = models.Team{WorkspaceID: f.workspace.ID, Kind: kind, Name: defaultTeamName(kind)}
	if err := db.Create(&f.team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}

	f.member = models.Member{TeamID: f.team.ID, UserID: userID, Name: "Test Member"}
	if err := db.Create(&f.member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	f.channel = models.Channel{
		WorkspaceID: f.workspace.ID,
		Name:        "general",
		Type:        models.ChannelGeneral,
		CreatedBy:   userID,
	}
	if err := db.Create(&f.channel).Error; err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	return f
}
