package services

import (
	"errors"
	"strings"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"gorm.io/gorm"
)

// Capability is one symbol from the closed permission vocabulary. Every
// mutating operation on workspace, channel, thread, or message state names
// the capability it requires.
type Capability string

const (
	CapSendMessage    Capability = "send_message"
	CapCreateThread   Capability = "create_thread"
	CapEditOwnMessage Capability = "edit_own_message"
	CapEditAnyMessage Capability = "edit_any_message"
	CapPinThread      Capability = "pin_thread"
	CapResolveThread  Capability = "resolve_thread"
	CapArchiveThread  Capability = "archive_thread"
	CapAddReaction    Capability = "add_reaction"
	CapCreateChannel  Capability = "create_channel"
	CapManageMembers  Capability = "manage_members"
	CapAssignAIAgent  Capability = "assign_ai_agent"

	CapAnswerQuestions Capability = "answer_questions"
	CapGenerateContent Capability = "generate_content"
	CapGenerateUI      Capability = "generate_ui"

	CapManageArtifacts Capability = "manage_artifacts"
	CapAdvancePhase    Capability = "advance_phase"
)

func (c Capability) Valid() bool {
	switch c {
	case CapSendMessage, CapCreateThread, CapEditOwnMessage, CapEditAnyMessage,
		CapPinThread, CapResolveThread, CapArchiveThread, CapAddReaction,
		CapCreateChannel, CapManageMembers, CapAssignAIAgent,
		CapAnswerQuestions, CapGenerateContent, CapGenerateUI,
		CapManageArtifacts, CapAdvancePhase:
		return true
	}
	return false
}

// defaultCapabilities is the per-team-kind default capability table. It is
// read-only after process start; member-level grants go through
// Member.ExtraCapabilities.
var defaultCapabilities = map[models.TeamKind]map[Capability]bool{
	models.TeamStudio: setOf(
		CapSendMessage, CapCreateThread, CapEditOwnMessage, CapEditAnyMessage,
		CapPinThread, CapResolveThread, CapArchiveThread, CapAddReaction,
		CapCreateChannel, CapManageMembers, CapAssignAIAgent,
		CapManageArtifacts, CapAdvancePhase,
	),
	models.TeamClient: setOf(
		CapSendMessage, CapCreateThread, CapEditOwnMessage, CapAddReaction,
	),
	models.TeamAgent: setOf(
		CapSendMessage, CapCreateThread, CapAddReaction,
		CapAnswerQuestions, CapGenerateContent, CapGenerateUI,
	),
}

func setOf(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

// KindAllows reports whether the team kind's default set contains the
// capability.
func KindAllows(kind models.TeamKind, cap Capability) bool {
	return defaultCapabilities[kind][cap]
}

// HasOverride reports whether the member carries an explicit grant for the
// capability beyond its team-kind defaults.
func HasOverride(m *models.Member, cap Capability) bool {
	return listContains(m.ExtraCapabilities, string(cap))
}

// AgentHasCapability reports whether an automated member's own capability
// set (answer_questions, generate_content, generate_ui, ...) includes cap.
func AgentHasCapability(m *models.Member, cap Capability) bool {
	return m.IsAutomated && listContains(m.Capabilities, string(cap))
}

func listContains(csv, want string) bool {
	if csv == "" {
		return false
	}
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == want {
			return true
		}
	}
	return false
}

type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// MemberByUser resolves the member record for a user within a workspace.
func (s *PermissionService) MemberByUser(workspaceID, userID uint) (*models.Member, *models.Team, error) {
	var teams []models.Team
	if err := s.db.Where("workspace_id = ?", workspaceID).Find(&teams).Error; err != nil {
		return nil, nil, response.NewStoreFailure(err.Error())
	}

	for i := range teams {
		var member models.Member
		err := s.db.Where("team_id = ? AND user_id = ?", teams[i].ID, userID).First(&member).Error
		if err == nil {
			return &member, &teams[i], nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewStoreFailure(err.Error())
		}
	}

	return nil, nil, response.NewNotFound("member not found in workspace")
}

// Check verifies that the member identified by memberID holds the
// capability, through its team kind's default set or an explicit override.
// A PermissionDenied error means no effect has been applied.
func (s *PermissionService) Check(memberID uint, cap Capability) error {
	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("member not found")
		}
		return response.NewStoreFailure(err.Error())
	}

	var team models.Team
	if err := s.db.First(&team, member.TeamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("team not found")
		}
		return response.NewStoreFailure(err.Error())
	}

	return CheckMember(&member, team.Kind, cap)
}

// CheckMember is the pure capability check against an already-loaded member.
func CheckMember(m *models.Member, kind models.TeamKind, cap Capability) error {
	if !cap.Valid() {
		return response.NewBadRequest("unknown capability: " + string(cap))
	}
	if KindAllows(kind, cap) || HasOverride(m, cap) {
		return nil
	}
	return response.NewPermissionDenied(string(cap) + " not permitted for " + string(kind) + " team members")
}
