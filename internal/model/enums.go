package model

// AIType classifies the kind of AI technique a system is built on.
type AIType string

const (
	AITypeML    AIType = "ML"
	AITypeLLM   AIType = "LLM"
	AITypeAgent AIType = "AGENT"
)

// DeploymentMode describes how a system is exposed to its consumers.
type DeploymentMode string

const (
	DeploymentBatch        DeploymentMode = "BATCH"
	DeploymentRealTime     DeploymentMode = "REAL_TIME"
	DeploymentHumanInLoop  DeploymentMode = "HUMAN_IN_LOOP"
	DeploymentInternalOnly DeploymentMode = "INTERNAL_ONLY"
)

// DecisionCriticality captures how consequential the system's decisions are.
type DecisionCriticality string

const (
	CriticalityLow    DecisionCriticality = "LOW"
	CriticalityMedium DecisionCriticality = "MEDIUM"
	CriticalityHigh   DecisionCriticality = "HIGH"
)

// AutomationLevel captures how much human oversight sits between the system
// and its effect.
type AutomationLevel string

const (
	AutomationAdvisory       AutomationLevel = "ADVISORY"
	AutomationHumanApproval  AutomationLevel = "HUMAN_APPROVAL"
	AutomationFullyAutomated AutomationLevel = "FULLY_AUTOMATED"
)

// DataSensitivity classifies the most sensitive data the system touches.
type DataSensitivity string

const (
	SensitivityPublic       DataSensitivity = "PUBLIC"
	SensitivityInternal     DataSensitivity = "INTERNAL"
	SensitivityConfidential DataSensitivity = "CONFIDENTIAL"
	SensitivityRegulatedPII DataSensitivity = "REGULATED_PII"
)

// RiskTier is the ordinal classification assigned by the tiering engine.
// TIER_1 is the highest risk.
type RiskTier string

const (
	Tier1 RiskTier = "TIER_1"
	Tier2 RiskTier = "TIER_2"
	Tier3 RiskTier = "TIER_3"
)

// LifecyclePhase identifies where in the system lifecycle a risk lives.
type LifecyclePhase string

const (
	PhaseInception    LifecyclePhase = "INCEPTION"
	PhaseData         LifecyclePhase = "DATA"
	PhaseDesignBuild  LifecyclePhase = "DESIGN_BUILD"
	PhaseValidation   LifecyclePhase = "VALIDATION"
	PhaseDeployment   LifecyclePhase = "DEPLOYMENT"
	PhaseOperations   LifecyclePhase = "OPERATIONS"
	PhaseChangeRetire LifecyclePhase = "CHANGE_RETIRE"
)

// RiskVector identifies the nature of a lifecycle risk.
type RiskVector string

const (
	VectorFunctional       RiskVector = "FUNCTIONAL"
	VectorRobustness       RiskVector = "ROBUSTNESS"
	VectorSecurity         RiskVector = "SECURITY"
	VectorBiasFairness     RiskVector = "BIAS_FAIRNESS"
	VectorInterpretability RiskVector = "INTERPRETABILITY"
	VectorOperational      RiskVector = "OPERATIONAL"
	VectorVendorOpacity    RiskVector = "VENDOR_OPACITY"
	VectorCompliance       RiskVector = "COMPLIANCE"
)

// Canonical orderings. Grid and report consumers rely on these being complete
// and stable, so keep them in declaration order.
var (
	AllAITypes = []AIType{AITypeML, AITypeLLM, AITypeAgent}

	AllDeploymentModes = []DeploymentMode{
		DeploymentBatch, DeploymentRealTime, DeploymentHumanInLoop, DeploymentInternalOnly,
	}

	AllCriticalities = []DecisionCriticality{
		CriticalityLow, CriticalityMedium, CriticalityHigh,
	}

	AllAutomationLevels = []AutomationLevel{
		AutomationAdvisory, AutomationHumanApproval, AutomationFullyAutomated,
	}

	AllSensitivities = []DataSensitivity{
		SensitivityPublic, SensitivityInternal, SensitivityConfidential, SensitivityRegulatedPII,
	}

	AllRiskTiers = []RiskTier{Tier1, Tier2, Tier3}

	AllLifecyclePhases = []LifecyclePhase{
		PhaseInception, PhaseData, PhaseDesignBuild, PhaseValidation,
		PhaseDeployment, PhaseOperations, PhaseChangeRetire,
	}

	AllRiskVectors = []RiskVector{
		VectorFunctional, VectorRobustness, VectorSecurity, VectorBiasFairness,
		VectorInterpretability, VectorOperational, VectorVendorOpacity, VectorCompliance,
	}
)

// Valid reports whether the value is a member of the closed enumeration.
func (t AIType) Valid() bool {
	switch t {
	case AITypeML, AITypeLLM, AITypeAgent:
		return true
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (m DeploymentMode) Valid() bool {
	switch m {
	case DeploymentBatch, DeploymentRealTime, DeploymentHumanInLoop, DeploymentInternalOnly:
		return true
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (c DecisionCriticality) Valid() bool {
	switch c {
	case CriticalityLow, CriticalityMedium, CriticalityHigh:
		return true
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (a AutomationLevel) Valid() bool {
	switch a {
	case AutomationAdvisory, AutomationHumanApproval, AutomationFullyAutomated:
		return true
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (s DataSensitivity) Valid() bool {
	switch s {
	case SensitivityPublic, SensitivityInternal, SensitivityConfidential, SensitivityRegulatedPII:
		return true
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (t RiskTier) Valid() bool {
	switch t {
	case Tier1, Tier2, Tier3:
		return true
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (p LifecyclePhase) Valid() bool {
	for _, known := range AllLifecyclePhases {
		if p == known {
			return true
		}
	}
	return false
}

// Valid reports whether the value is a member of the closed enumeration.
func (v RiskVector) Valid() bool {
	for _, known := range AllRiskVectors {
		if v == known {
			return true
		}
	}
	return false
}
