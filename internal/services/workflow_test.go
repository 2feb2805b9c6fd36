package services

import (
	"testing"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"gorm.io/gorm"
)

func TestCompletionColumn(t *testing.T) {
	cases := []struct {
		phase  models.PhaseName
		column string
	}{
		{models.PhaseDiscovery, "discovery_complete"},
		{models.PhaseDefinition, "definition_complete"},
		{models.PhaseDesign, "design_complete"},
		{models.PhaseDevelopment, "development_complete"},
	}

	for _, tc := range cases {
		if got := completionColumn(tc.phase); got != tc.column {
			t.Errorf("completionColumn(%q) = %q, expected %q", tc.phase, got, tc.column)
		}
	}
}

// seedProject creates a project through the service plus the workspace graph
// that permission checks resolve the acting user through.
func seedProject(t *testing.T, db *gorm.DB, svc *WorkflowService, userID uint) *models.Project {
	t.Helper()

	project, err := svc.CreateProject("Acme Website", userID)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	workspace := models.Workspace{ProjectID: project.ID, Name: "Acme Website", CreatedBy: userID}
	if err := db.Create(&workspace).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	team := models.Team{WorkspaceID: workspace.ID, Kind: models.TeamStudio, Name: "Studio Team"}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	member := models.Member{TeamID: team.ID, UserID: userID, Name: "Producer"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return project
}

func TestCreateProject_StartsDiscovery(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)

	project := seedProject(t, db, svc, 9)
	if project.CurrentPhase != models.PhaseDiscovery {
		t.Errorf("current_phase = %s, expected discovery", project.CurrentPhase)
	}

	phases, err := svc.ListPhases(project.ID)
	if err != nil {
		t.Fatalf("ListPhases: %v", err)
	}
	if len(phases) != 4 {
		t.Fatalf("got %d phases, expected 4", len(phases))
	}
	for i, phase := range phases {
		if phase.Name != models.PhaseOrder[i] {
			t.Errorf("position %d: phase %s, expected %s", i, phase.Name, models.PhaseOrder[i])
		}
		if i == 0 {
			if phase.Status != models.PhaseInProgress || phase.StartedAt == nil {
				t.Errorf("discovery: status=%s started_at=%v, expected started in_progress", phase.Status, phase.StartedAt)
			}
		} else if phase.Status != models.PhaseNotStarted {
			t.Errorf("%s: status = %s, expected not_started", phase.Name, phase.Status)
		}
	}
}

func TestCompletePhase_StartsNextPhase(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	updated, err := svc.CompletePhase(project.ID, models.PhaseDiscovery, 9)
	if err != nil {
		t.Fatalf("CompletePhase: %v", err)
	}

	if updated.CurrentPhase != models.PhaseDefinition {
		t.Errorf("current_phase = %s, expected definition", updated.CurrentPhase)
	}
	if !updated.DiscoveryComplete {
		t.Error("discovery_complete flag must be set")
	}

	phases, err := svc.ListPhases(project.ID)
	if err != nil {
		t.Fatalf("ListPhases: %v", err)
	}
	if phases[0].Status != models.PhaseCompleted || phases[0].CompletedAt == nil {
		t.Errorf("discovery: status=%s completed_at=%v, expected completed", phases[0].Status, phases[0].CompletedAt)
	}
	if phases[1].Status != models.PhaseInProgress || phases[1].StartedAt == nil {
		t.Errorf("definition: status=%s started_at=%v, expected started in_progress", phases[1].Status, phases[1].StartedAt)
	}
}

func TestCompletePhase_ForwardOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	// Only the current phase can be completed.
	if _, err := svc.CompletePhase(project.ID, models.PhaseDesign, 9); !response.IsInvalidState(err) {
		t.Errorf("completing a future phase: got %v, expected invalid state", err)
	}

	if _, err := svc.CompletePhase(project.ID, models.PhaseDiscovery, 9); err != nil {
		t.Fatalf("CompletePhase(discovery): %v", err)
	}
	// A completed phase cannot be completed again.
	if _, err := svc.CompletePhase(project.ID, models.PhaseDiscovery, 9); !response.IsInvalidState(err) {
		t.Errorf("re-completing discovery: got %v, expected invalid state", err)
	}
}

func TestCompletePhase_DevelopmentCompletesProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	for _, name := range models.PhaseOrder {
		if _, err := svc.CompletePhase(project.ID, name, 9); err != nil {
			t.Fatalf("CompletePhase(%s): %v", name, err)
		}
	}

	final, err := svc.GetProject(project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if final.Status != models.ProjectCompleted {
		t.Errorf("status = %s, expected completed after development", final.Status)
	}
	if !final.DevelopmentComplete {
		t.Error("development_complete flag must be set")
	}

	// Nothing further to complete on a finished project.
	if _, err := svc.CompletePhase(project.ID, models.PhaseDevelopment, 9); !response.IsInvalidState(err) {
		t.Errorf("completing on a finished project: got %v, expected invalid state", err)
	}
}

func TestStartPhase_RejectsEarlierPhase(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	if _, err := svc.CompletePhase(project.ID, models.PhaseDiscovery, 9); err != nil {
		t.Fatalf("CompletePhase: %v", err)
	}

	if _, err := svc.StartPhase(project.ID, models.PhaseDiscovery, 9); !response.IsInvalidState(err) {
		t.Errorf("starting an earlier phase: got %v, expected invalid state", err)
	}
	if _, err := svc.StartPhase(project.ID, models.PhaseDefinition, 9); !response.IsInvalidState(err) {
		t.Errorf("starting an already started phase: got %v, expected invalid state", err)
	}
}

func TestCompletePhase_DeniedForClientMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	var workspace models.Workspace
	if err := db.Where("project_id = ?", project.ID).First(&workspace).Error; err != nil {
		t.Fatalf("load workspace: %v", err)
	}
	clientTeam := models.Team{WorkspaceID: workspace.ID, Kind: models.TeamClient, Name: "Client Team"}
	if err := db.Create(&clientTeam).Error; err != nil {
		t.Fatalf("seed client team: %v", err)
	}
	client := models.Member{TeamID: clientTeam.ID, UserID: 33, Name: "Client Lead"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client member: %v", err)
	}

	if _, err := svc.CompletePhase(project.ID, models.PhaseDiscovery, 33); !response.IsPermissionDenied(err) {
		t.Fatalf("got %v, expected permission denied", err)
	}

	reloaded, err := svc.GetProject(project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if reloaded.CurrentPhase != models.PhaseDiscovery || reloaded.DiscoveryComplete {
		t.Error("denied complete_phase must leave the project untouched")
	}
}

func TestInitializePhaseArtifacts_CreatesAllowedDrafts(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	artifacts, err := svc.InitializePhaseArtifacts(project.ID, models.PhaseDiscovery, 9)
	if err != nil {
		t.Fatalf("InitializePhaseArtifacts: %v", err)
	}

	allowed := models.PhaseArtifactTypes[models.PhaseDiscovery]
	if len(artifacts) != len(allowed) {
		t.Fatalf("got %d artifacts, expected one per allowed type (%d)", len(artifacts), len(allowed))
	}
	for _, artifact := range artifacts {
		if artifact.Status != models.ArtifactDraft {
			t.Errorf("%s: status = %s, expected draft", artifact.Type, artifact.Status)
		}
		if !artifact.Type.AllowedInPhase(models.PhaseDiscovery) {
			t.Errorf("%s is not an allowed discovery artifact type", artifact.Type)
		}
	}

	// Re-initialization skips existing artifacts.
	again, err := svc.InitializePhaseArtifacts(project.ID, models.PhaseDiscovery, 9)
	if err != nil {
		t.Fatalf("second InitializePhaseArtifacts: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second initialization created %d artifacts, expected 0", len(again))
	}
}

func TestCreateArtifact_TypeOutsidePhaseAllowList(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	phases, err := svc.ListPhases(project.ID)
	if err != nil {
		t.Fatalf("ListPhases: %v", err)
	}
	discovery := phases[0]

	// Wireframes belong to definition, not discovery.
	if _, err := svc.CreateArtifact(project.ID, &CreateArtifactRequest{
		PhaseID: discovery.ID,
		Type:    models.ArtifactWireframes,
		Title:   "Homepage wireframes",
	}, 9); !response.IsInvalidState(err) {
		t.Errorf("got %v, expected invalid state for a disallowed artifact type", err)
	}
}

func TestUpdateArtifact_VersionBumpsOnContentChange(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	project := seedProject(t, db, svc, 9)

	phases, err := svc.ListPhases(project.ID)
	if err != nil {
		t.Fatalf("ListPhases: %v", err)
	}

	artifact, err := svc.CreateArtifact(project.ID, &CreateArtifactRequest{
		PhaseID: phases[0].ID,
		Type:    models.ArtifactCreativeBrief,
		Title:   "Creative brief",
		Content: "v1",
	}, 9)
	if err != nil {
		t.Fatalf("CreateArtifact: %v", err)
	}

	// A title-only edit does not bump the version.
	title := "Creative brief (final)"
	renamed, err := svc.UpdateArtifact(artifact.ID, &UpdateArtifactRequest{Title: &title}, 9)
	if err != nil {
		t.Fatalf("UpdateArtifact(title): %v", err)
	}
	if renamed.Version != artifact.Version {
		t.Errorf("version = %d after title edit, expected unchanged %d", renamed.Version, artifact.Version)
	}

	content := "v2"
	revised, err := svc.UpdateArtifact(artifact.ID, &UpdateArtifactRequest{Content: &content}, 9)
	if err != nil {
		t.Fatalf("UpdateArtifact(content): %v", err)
	}
	if revised.Version != artifact.Version+1 {
		t.Errorf("version = %d after content change, expected %d", revised.Version, artifact.Version+1)
	}
}
