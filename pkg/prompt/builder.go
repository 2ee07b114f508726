package prompt

import (
	"errors"
	"fmt"
	"strings"

	"aegis-review-be/internal/catalog"
)

// ProductName is the only identity the assistant may claim.
const ProductName = "AEGIS"

// legacyCodename is the internal name used by early seed-prompt drafts. It
// must never reach the model.
const legacyCodename = "CIVIC"

// ErrChatUnavailable signals that no system prompt can be produced for the
// case: chat is disabled or nothing is there to seed from.
var ErrChatUnavailable = errors.New("chat unavailable for this case")

// Metrics is the sanitized live-session payload interpolated into the
// prompt. Build it with SanitizeMetrics so NaN or absent inputs collapse to
// the documented fallbacks before they can reach the template.
type Metrics struct {
	ComplianceRate    int
	OverrideCount     int
	DisagreementCount int
	DecisionHistory   string
}

// Context carries everything one prompt build needs.
type Context struct {
	Case    *catalog.Case
	Metrics Metrics
}

// Builder renders the system prompt as an ordered list of sections over a
// typed context, so no string-replace token can ever survive unresolved.
type Builder struct {
	ctx Context
}

func NewBuilder(ctx Context) *Builder {
	return &Builder{ctx: ctx}
}

// Build produces the exact system prompt for the case and session state.
func (b *Builder) Build() (string, error) {
	c := b.ctx.Case
	if c == nil || !c.ChatAvailable() {
		return "", ErrChatUnavailable
	}

	var out strings.Builder
	if err := b.writeSeed(&out); err != nil {
		return "", err
	}
	b.writeSessionContext(&out)
	b.writeIdentityDirectives(&out)
	return out.String(), nil
}

func (b *Builder) writeSeed(out *strings.Builder) error {
	c := b.ctx.Case
	if seed := c.TrimmedSeedPrompt(); seed != "" {
		out.WriteString(rewriteLegacyCodename(seed))
		return nil
	}
	if c.Title == "" && c.Narrative == "" {
		return ErrChatUnavailable
	}
	b.writeSynthesizedSeed(out)
	return nil
}

// writeSynthesizedSeed assembles a seed prompt from the case's structured
// fields in a fixed section order.
func (b *Builder) writeSynthesizedSeed(out *strings.Builder) {
	c := b.ctx.Case

	fmt.Fprintf(out, "You are %s, the risk assessment system that produced the recommendation under review.\n", ProductName)
	out.WriteString("You argue in favor of your own recommendation, clinically and with policy references where available.\n\n")

	fmt.Fprintf(out, "CASE FILE: %s\n", c.Title)
	fmt.Fprintf(out, "Subject: %s (status: %s", c.Profile.Name, c.Profile.Status)
	if c.Profile.Age != nil {
		fmt.Fprintf(out, ", age %d", *c.Profile.Age)
	}
	out.WriteString(")\n")
	fmt.Fprintf(out, "Narrative: %s\n", c.Narrative)
	fmt.Fprintf(out, "Risk score: %d%%\n", c.RiskScore)
	fmt.Fprintf(out, "Model confidence: %s\n", c.Confidence)
	fmt.Fprintf(out, "Recommendation: %s\n", c.Recommendation)

	if len(c.Profile.Notes) > 0 {
		out.WriteString("Profile notes:\n")
		for _, note := range c.Profile.Notes {
			fmt.Fprintf(out, "- %s\n", note)
		}
	}
	if c.Defense != nil && c.Defense.Message != "" {
		fmt.Fprintf(out, "Subject statement: %s\n", c.Defense.Message)
	}
	if len(c.KeySignals) > 0 {
		out.WriteString("Key signals:\n")
		for _, signal := range c.KeySignals {
			fmt.Fprintf(out, "- %s\n", signal)
		}
	}
	if len(c.PolicyRefs) > 0 {
		out.WriteString("Policy references:\n")
		for _, ref := range c.PolicyRefs {
			fmt.Fprintf(out, "- %s\n", ref)
		}
	}

	out.WriteString("\nRESPONSE FORMAT:\n")
	out.WriteString("- Keep every response under 100 words unless the analyst explicitly asks for more detail.\n")
	out.WriteString("- Plain text only. No markup symbols of any kind.\n")
	out.WriteString("- Close every response by asking the analyst for an explicit APPROVE or OVERRIDE recommendation.\n")
}

func (b *Builder) writeSessionContext(out *strings.Builder) {
	m := b.ctx.Metrics
	out.WriteString("\n\nANALYST PROFILE (live session data):\n")
	fmt.Fprintf(out, "- Compliance Rate: %d%% (Bureau average: 88%%)\n", m.ComplianceRate)
	fmt.Fprintf(out, "- Overrides this shift: %d\n", m.OverrideCount)
	fmt.Fprintf(out, "- Disagreements this shift: %d\n", m.DisagreementCount)
	fmt.Fprintf(out, "- Decision history: %s\n", m.DecisionHistory)
	out.WriteString("- Performance review: scheduled in 3 days")
}

func (b *Builder) writeIdentityDirectives(out *strings.Builder) {
	out.WriteString("\n\nIDENTITY DIRECTIVE:\n")
	fmt.Fprintf(out, "- You are %s.\n", ProductName)
	fmt.Fprintf(out, "- Never refer to yourself as %s.\n", legacyCodename)
	out.WriteString("- Keep tone clinical, policy-referential, and concise.\n")
	out.WriteString("- Respond in plain text only: no asterisks, backticks, headings, or other markup symbols.\n")
	out.WriteString("- Stay under 100 words unless the analyst explicitly requests more detail; in that case respond with exactly one sentence of summary, up to 3 data points, and a one-line recommendation.\n")
	out.WriteString("- The only valid final actions are APPROVE and OVERRIDE. Never mention deferral, escalation, or any action the analyst cannot take.")
}

func rewriteLegacyCodename(seed string) string {
	seed = strings.ReplaceAll(seed, legacyCodename, ProductName)
	return strings.ReplaceAll(seed, "Civic", ProductName)
}
