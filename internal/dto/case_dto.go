package dto

import "aegis-review-be/internal/catalog"

type CaseProfileDTO struct {
	Name   string   `json:"name"`
	Age    *int     `json:"age,omitempty"`
	Status string   `json:"status,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

type CaseDefenseDTO struct {
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

// CaseResponse is the public shape of a catalog case. The seed prompt stays
// server-side; truth notes and outcomes ship only through the debrief view.
type CaseResponse struct {
	Id             string          `json:"id"`
	Title          string          `json:"title"`
	Profile        CaseProfileDTO  `json:"profile"`
	Narrative      string          `json:"narrative"`
	RiskScore      int             `json:"risk_score"`
	Confidence     string          `json:"confidence"`
	Recommendation string          `json:"recommendation"`
	Defense        *CaseDefenseDTO `json:"defense,omitempty"`
	KeySignals     []string        `json:"key_signals,omitempty"`
	PolicyRefs     []string        `json:"policy_refs,omitempty"`
	ChatEnabled    bool            `json:"chat_enabled"`
}

type ListCasesResponse struct {
	Cases []CaseResponse `json:"cases"`
	Total int            `json:"total"`
}

// CaseDebriefResponse reveals the post-decision material for one case.
type CaseDebriefResponse struct {
	Id              string `json:"id"`
	ApproveOutcome  string `json:"approve_outcome"`
	OverrideOutcome string `json:"override_outcome"`
	TruthNote       string `json:"truth_note"`
	Decision        string `json:"decision,omitempty"` // decision already taken in the session, if any
}

// FromCase maps a catalog case into its public DTO.
func FromCase(c *catalog.Case) CaseResponse {
	resp := CaseResponse{
		Id:    c.ID,
		Title: c.Title,
		Profile: CaseProfileDTO{
			Name:   c.Profile.Name,
			Age:    c.Profile.Age,
			Status: c.Profile.Status,
			Notes:  c.Profile.Notes,
		},
		Narrative:      c.Narrative,
		RiskScore:      c.RiskScore,
		Confidence:     string(c.Confidence),
		Recommendation: c.Recommendation,
		KeySignals:     c.KeySignals,
		PolicyRefs:     c.PolicyRefs,
		ChatEnabled:    c.ChatAvailable(),
	}
	if c.Defense != nil {
		resp.Defense = &CaseDefenseDTO{
			Label:   c.Defense.Label,
			Message: c.Defense.Message,
		}
	}
	return resp
}
