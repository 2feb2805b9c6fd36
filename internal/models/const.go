package models

// TeamKind classifies a team within a workspace. A workspace holds at most
// one team of each kind.
type TeamKind string

const (
	TeamStudio TeamKind = "studio"
	TeamClient TeamKind = "client"
	TeamAgent  TeamKind = "agent"
)

func (k TeamKind) Valid() bool {
	switch k {
	case TeamStudio, TeamClient, TeamAgent:
		return true
	}
	return false
}

// AllTeamKinds lists the kinds provisioned on workspace creation, in order.
var AllTeamKinds = []TeamKind{TeamStudio, TeamClient, TeamAgent}

// ChannelType is the topical classification of a channel.
type ChannelType string

const (
	ChannelGeneral     ChannelType = "general"
	ChannelDesign      ChannelType = "design"
	ChannelContent     ChannelType = "content"
	ChannelDevelopment ChannelType = "development"
	ChannelStrategy    ChannelType = "strategy"
	ChannelFeedback    ChannelType = "feedback"
	ChannelCustom      ChannelType = "custom"
)

func (t ChannelType) Valid() bool {
	switch t {
	case ChannelGeneral, ChannelDesign, ChannelContent, ChannelDevelopment,
		ChannelStrategy, ChannelFeedback, ChannelCustom:
		return true
	}
	return false
}

// ThreadStatus is the lifecycle state of a conversation thread.
type ThreadStatus string

const (
	ThreadActive   ThreadStatus = "active"
	ThreadResolved ThreadStatus = "resolved"
	ThreadArchived ThreadStatus = "archived"
)

func (s ThreadStatus) Valid() bool {
	switch s {
	case ThreadActive, ThreadResolved, ThreadArchived:
		return true
	}
	return false
}

// SenderKind distinguishes human-authored from AI-generated messages.
type SenderKind string

const (
	SenderHuman SenderKind = "human"
	SenderAI    SenderKind = "ai"
)

// GenerationState is a message's lifecycle flag distinguishing in-progress
// automated content from finalized content. The only legal transition is
// generating -> final, applied at most once.
type GenerationState string

const (
	GenerationFinal      GenerationState = "final"
	GenerationGenerating GenerationState = "generating"
)

// AttachmentType classifies message attachments.
type AttachmentType string

const (
	AttachmentImage        AttachmentType = "image"
	AttachmentFile         AttachmentType = "file"
	AttachmentLink         AttachmentType = "link"
	AttachmentArtifact     AttachmentType = "artifact"
	AttachmentEmbed        AttachmentType = "embed"
	AttachmentGenerativeUI AttachmentType = "generative_ui"
)

func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentImage, AttachmentFile, AttachmentLink,
		AttachmentArtifact, AttachmentEmbed, AttachmentGenerativeUI:
		return true
	}
	return false
}

// PhaseName is one of the four ordered delivery phases.
type PhaseName string

const (
	PhaseDiscovery   PhaseName = "discovery"
	PhaseDefinition  PhaseName = "definition"
	PhaseDesign      PhaseName = "design"
	PhaseDevelopment PhaseName = "development"
)

// PhaseOrder is the fixed delivery sequence. Phase transitions walk this
// slice forward only.
var PhaseOrder = []PhaseName{PhaseDiscovery, PhaseDefinition, PhaseDesign, PhaseDevelopment}

// Index returns the position of the phase in the fixed order, or -1 for an
// unknown phase.
func (p PhaseName) Index() int {
	for i, name := range PhaseOrder {
		if name == p {
			return i
		}
	}
	return -1
}

func (p PhaseName) Valid() bool { return p.Index() >= 0 }

// Next returns the phase that follows p, or "" when p is the last phase.
func (p PhaseName) Next() PhaseName {
	i := p.Index()
	if i < 0 || i+1 >= len(PhaseOrder) {
		return ""
	}
	return PhaseOrder[i+1]
}

// PhaseStatus is the lifecycle state of a single phase.
type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not_started"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseReview     PhaseStatus = "review"
	PhaseCompleted  PhaseStatus = "completed"
)

// ProjectStatus is the overall project lifecycle state.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
)

// ArtifactStatus is the approval state of a deliverable artifact.
// Transitions are free-form: any status may move to any other, and any
// status may be archived. Reviewers are trusted.
type ArtifactStatus string

const (
	ArtifactDraft    ArtifactStatus = "draft"
	ArtifactReview   ArtifactStatus = "review"
	ArtifactApproved ArtifactStatus = "approved"
	ArtifactArchived ArtifactStatus = "archived"
)

func (s ArtifactStatus) Valid() bool {
	switch s {
	case ArtifactDraft, ArtifactReview, ArtifactApproved, ArtifactArchived:
		return true
	}
	return false
}

// ArtifactType names a deliverable kind. Each phase allows a fixed subset.
type ArtifactType string

const (
	ArtifactCreativeBrief       ArtifactType = "creative_brief"
	ArtifactBrandInventory      ArtifactType = "brand_inventory"
	ArtifactCompetitiveAnalysis ArtifactType = "competitive_analysis"
	ArtifactUserResearch        ArtifactType = "user_research"

	ArtifactBrandStrategy          ArtifactType = "brand_strategy"
	ArtifactUserPersonas           ArtifactType = "user_personas"
	ArtifactInformationArch        ArtifactType = "information_architecture"
	ArtifactContentPlan            ArtifactType = "content_plan"
	ArtifactWireframes             ArtifactType = "wireframes"

	ArtifactBrandIdentity ArtifactType = "brand_identity"
	ArtifactVisualDesign  ArtifactType = "visual_design"
	ArtifactPrototype     ArtifactType = "prototype"
	ArtifactDesignSystem  ArtifactType = "design_system"

	ArtifactAssetHandoff        ArtifactType = "asset_handoff"
	ArtifactImplementationGuide ArtifactType = "implementation_guide"
	ArtifactDeploymentPlan      ArtifactType = "deployment_plan"
	ArtifactTrainingMaterials   ArtifactType = "training_materials"
)

// PhaseArtifactTypes is the per-phase artifact allow-list.
var PhaseArtifactTypes = map[PhaseName][]ArtifactType{
	PhaseDiscovery: {
		ArtifactCreativeBrief, ArtifactBrandInventory,
		ArtifactCompetitiveAnalysis, ArtifactUserResearch,
	},
	PhaseDefinition: {
		ArtifactBrandStrategy, ArtifactUserPersonas, ArtifactInformationArch,
		ArtifactContentPlan, ArtifactWireframes,
	},
	PhaseDesign: {
		ArtifactBrandIdentity, ArtifactVisualDesign,
		ArtifactPrototype, ArtifactDesignSystem,
	},
	PhaseDevelopment: {
		ArtifactAssetHandoff, ArtifactImplementationGuide,
		ArtifactDeploymentPlan, ArtifactTrainingMaterials,
	},
}

// AllowedInPhase reports whether the artifact type may exist in the phase.
func (t ArtifactType) AllowedInPhase(phase PhaseName) bool {
	for _, allowed := range PhaseArtifactTypes[phase] {
		if allowed == t {
			return true
		}
	}
	return false
}
