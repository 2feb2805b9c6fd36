package services

import (
	"sync"
	"testing"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
)

func TestWorkspaceCreate_ProvisionsTeamsAndGeneralChannel(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db)

	workspace, err := svc.Create(&CreateWorkspaceRequest{
		ProjectID: 7,
		Name:      "Acme Rebrand",
	}, 42)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(workspace.Teams) != 3 {
		t.Fatalf("got %d teams, expected one per kind", len(workspace.Teams))
	}
	seen := map[models.TeamKind]int{}
	for _, team := range workspace.Teams {
		seen[team.Kind]++
	}
	for _, kind := range models.AllTeamKinds {
		if seen[kind] != 1 {
			t.Errorf("kind %s: got %d teams, expected exactly 1", kind, seen[kind])
		}
	}

	if len(workspace.Channels) != 1 {
		t.Fatalf("got %d channels, expected the default general channel", len(workspace.Channels))
	}
	general := workspace.Channels[0]
	if general.Name != "general" || general.Type != models.ChannelGeneral {
		t.Errorf("default channel = %s/%s, expected general/general", general.Name, general.Type)
	}
	if general.IsPrivate {
		t.Error("default general channel must be public")
	}

	// The creating user joins the studio team as admin.
	member, team, err := NewPermissionService(db).MemberByUser(workspace.ID, 42)
	if err != nil {
		t.Fatalf("MemberByUser: %v", err)
	}
	if team.Kind != models.TeamStudio || !member.IsAdmin {
		t.Errorf("creator resolved to kind=%s admin=%v, expected studio admin", team.Kind, member.IsAdmin)
	}
}

func TestEnsureTeam_ReturnsExistingTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db)

	workspace := models.Workspace{ProjectID: 1, Name: "Acme Rebrand"}
	if err := db.Create(&workspace).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	first, err := svc.EnsureTeam(workspace.ID, models.TeamClient, "Client Team")
	if err != nil {
		t.Fatalf("first EnsureTeam: %v", err)
	}
	second, err := svc.EnsureTeam(workspace.ID, models.TeamClient, "Different Name")
	if err != nil {
		t.Fatalf("second EnsureTeam: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second call returned team %d, expected existing team %d", second.ID, first.ID)
	}

	var count int64
	db.Model(&models.Team{}).
		Where("workspace_id = ? AND kind = ?", workspace.ID, models.TeamClient).
		Count(&count)
	if count != 1 {
		t.Errorf("got %d client teams, expected 1", count)
	}
}

func TestEnsureTeam_DuplicateKindRejectedBySchema(t *testing.T) {
	db := newTestDB(t)

	workspace := models.Workspace{ProjectID: 1, Name: "Acme Rebrand"}
	if err := db.Create(&workspace).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	first := models.Team{WorkspaceID: workspace.ID, Kind: models.TeamClient, Name: "Client Team"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := models.Team{WorkspaceID: workspace.ID, Kind: models.TeamClient, Name: "Client Team Again"}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("second team of the same kind must violate the (workspace_id, kind) unique index")
	}
}

func TestEnsureTeam_ConcurrentCallsYieldOneTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db)

	workspace := models.Workspace{ProjectID: 1, Name: "Acme Rebrand"}
	if err := db.Create(&workspace).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	const callers = 4
	teams := make([]*models.Team, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			teams[i], errs[i] = svc.EnsureTeam(workspace.ID, models.TeamAgent, "")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if teams[i].ID != teams[0].ID {
			t.Errorf("caller %d got team %d, expected the single team %d", i, teams[i].ID, teams[0].ID)
		}
	}

	var count int64
	db.Model(&models.Team{}).
		Where("workspace_id = ? AND kind = ?", workspace.ID, models.TeamAgent).
		Count(&count)
	if count != 1 {
		t.Errorf("got %d agent teams after concurrent EnsureTeam, expected 1", count)
	}
}

func TestAddMember_AutomatedOutsideAgentTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkspaceService(db)
	f := seedWorkspace(t, db, models.TeamStudio, 1)

	_, err := svc.AddMember(f.team.ID, &AddMemberRequest{
		Name:        "Brief Assistant",
		IsAutomated: true,
		ModelID:     "gpt-4o",
	})
	if err == nil {
		t.Fatal("automated member in a studio team must be rejected")
	}
	if !response.IsInvalidState(err) {
		t.Errorf("got %v, expected an invalid-state error", err)
	}

	var count int64
	db.Model(&models.Member{}).Where("team_id = ? AND is_automated = ?", f.team.ID, true).Count(&count)
	if count != 0 {
		t.Error("rejected member must not be persisted")
	}
}
