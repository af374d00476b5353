package evidence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"aigov/internal/model"
	"aigov/internal/scoring"
)

// renderSummaryMarkdown produces the executive summary artifact. The summary
// deliberately embeds no wall-clock timestamp: its bytes feed outputs_hash,
// which must be stable across re-runs over unchanged state. The generation
// timestamp lives in the manifest.
func renderSummaryMarkdown(runID, attribution string, cfg scoring.Config, snap snapshot) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Executive Summary for Case 1 (Run ID: %s)\n\n", runID)
	fmt.Fprintf(&b, "**App Version:** %s\n", cfg.AppVersion)
	fmt.Fprintf(&b, "**Prepared By:** %s\n\n", attribution)

	b.WriteString("---\n\n")
	b.WriteString("## Executive Overview\n\n")
	b.WriteString("This report provides an assessment of the organization's AI system portfolio, ")
	b.WriteString("including risk tiering analysis and lifecycle risk evaluation. The assessment ")
	b.WriteString("applies a deterministic, rules-based methodology so that risk classification is ")
	b.WriteString("consistent and auditable across all systems.\n\n")

	writeInventorySection(&b, snap)
	writeTieringSection(&b, snap)
	writeRiskSection(&b, snap)
	writeTopRisksSection(&b, snap)
	writeFindingsSection(&b, snap)

	b.WriteString("---\n\n")
	b.WriteString("*This executive summary is auto-generated from the state of the AI system ")
	b.WriteString("inventory and risk register captured by this run. For detailed technical ")
	b.WriteString("information, refer to the accompanying artifacts: model_inventory.csv, ")
	b.WriteString("risk_tiering.json, and lifecycle_risk_map.json.*\n")

	return []byte(b.String())
}

// countBucket is one "value: N" line in a distribution list.
type countBucket struct {
	label string
	count int
}

// bucketize counts labels and orders buckets by count descending, label
// ascending, so the rendering is deterministic.
func bucketize(labels []string) []countBucket {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	out := make([]countBucket, 0, len(counts))
	for l, n := range counts {
		out = append(out, countBucket{label: l, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func writeBuckets(b *strings.Builder, noun string, buckets []countBucket) {
	for _, bk := range buckets {
		fmt.Fprintf(b, "- %s: %d %s%s\n", bk.label, bk.count, noun, plural(bk.count))
	}
	b.WriteString("\n")
}

func writeInventorySection(b *strings.Builder, snap snapshot) {
	b.WriteString("## AI System Inventory Summary\n\n")
	fmt.Fprintf(b, "**Total AI Systems Registered:** %d\n\n", len(snap.systems))

	var types, domains, crits []string
	for _, s := range snap.systems {
		types = append(types, string(s.AIType))
		domains = append(domains, s.Domain)
		crits = append(crits, string(s.DecisionCriticality))
	}

	b.WriteString("**Breakdown by AI Type:**\n")
	writeBuckets(b, "system", bucketize(types))
	b.WriteString("**Systems by Business Domain:**\n")
	writeBuckets(b, "system", bucketize(domains))
	b.WriteString("**Decision Criticality Distribution:**\n")
	writeBuckets(b, "system", bucketize(crits))
}

func writeTieringSection(b *strings.Builder, snap snapshot) {
	b.WriteString("## Risk Tiering Overview\n\n")
	b.WriteString("Each system is assigned to one of three tiers by a scoring model covering ")
	b.WriteString("decision criticality, data sensitivity, automation level, AI type, deployment ")
	b.WriteString("mode, and external dependencies. Higher tiers trigger more stringent controls.\n\n")

	tierCounts := make(map[model.RiskTier]int)
	for _, r := range snap.results {
		tierCounts[r.RiskTier]++
	}

	b.WriteString("**Tier Distribution:**\n")
	for _, tier := range model.AllRiskTiers {
		label := string(tier)
		if tier == model.Tier1 {
			label += " (Highest Risk)"
		}
		n := tierCounts[tier]
		fmt.Fprintf(b, "- **%s**: %d system%s\n", label, n, plural(n))
	}
	b.WriteString("\n")

	if len(snap.results) > 0 {
		total := 0
		for _, r := range snap.results {
			total += r.TotalScore
		}
		avg := float64(total) / float64(len(snap.results))
		fmt.Fprintf(b, "**Average Risk Score Across All Systems:** %.1f\n\n", avg)
	}

	for _, tier := range model.AllRiskTiers {
		var lines []string
		for _, s := range snap.systems {
			r, ok := snap.resultFor(s.SystemID)
			if !ok || r.RiskTier != tier {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s (Score: %d, Domain: %s, Type: %s)",
				s.Name, r.TotalScore, s.Domain, s.AIType))
		}
		if len(lines) > 0 {
			fmt.Fprintf(b, "**%s Systems:**\n", tier)
			b.WriteString(strings.Join(lines, "\n"))
			b.WriteString("\n\n")
		}
	}
}

func writeRiskSection(b *strings.Builder, snap snapshot) {
	b.WriteString("## Lifecycle Risk Analysis\n\n")

	all := snap.allRisks()
	if len(all) == 0 {
		b.WriteString("**Total Risks Identified:** 0\n\n")
		b.WriteString("*Note: No lifecycle risks have been registered yet. Risk register ")
		b.WriteString("population is recommended for all systems, particularly those in TIER_1.*\n\n")
		return
	}

	fmt.Fprintf(b, "**Total Risks Identified:** %d\n\n", len(all))

	var phases, vectors []string
	for _, r := range all {
		phases = append(phases, string(r.LifecyclePhase))
		vectors = append(vectors, string(r.RiskVector))
	}

	b.WriteString("**Risks by Lifecycle Phase:**\n")
	writeBuckets(b, "risk", bucketize(phases))
	b.WriteString("**Risks by Vector:**\n")
	writeBuckets(b, "risk", bucketize(vectors))

	sum, maxSev, high := 0, 0, 0
	for _, r := range all {
		sum += r.Severity
		if r.Severity > maxSev {
			maxSev = r.Severity
		}
		if r.Severity >= 15 {
			high++
		}
	}
	b.WriteString("**Severity Statistics:**\n")
	fmt.Fprintf(b, "- Mean Severity: %.2f\n", float64(sum)/float64(len(all)))
	fmt.Fprintf(b, "- Maximum Severity: %d\n", maxSev)
	fmt.Fprintf(b, "- High Severity Risks (>=15): %d\n\n", high)
}

func writeTopRisksSection(b *strings.Builder, snap snapshot) {
	b.WriteString("## Top Risks by Severity (Across All Systems)\n\n")

	all := snap.allRisks()
	if len(all) == 0 {
		b.WriteString("No risks have been registered. It is strongly recommended to populate the ")
		b.WriteString("lifecycle risk register for all AI systems, especially those classified as TIER_1.\n\n")
		return
	}

	b.WriteString("The following are the highest-severity risks identified across the portfolio. ")
	b.WriteString("They should be prioritized in mitigation planning.\n\n")

	top := make([]model.LifecycleRiskEntry, len(all))
	copy(top, all)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Severity != top[j].Severity {
			return top[i].Severity > top[j].Severity
		}
		return top[i].RiskID.String() < top[j].RiskID.String()
	})
	if len(top) > 5 {
		top = top[:5]
	}

	for i, r := range top {
		fmt.Fprintf(b, "### %d. %s\n", i+1, snap.systemName(r.SystemID))
		fmt.Fprintf(b, "**Lifecycle Phase:** %s | **Risk Vector:** %s\n\n", r.LifecyclePhase, r.RiskVector)
		fmt.Fprintf(b, "**Severity Score:** %d (Impact: %d/5, Likelihood: %d/5)\n\n", r.Severity, r.Impact, r.Likelihood)
		fmt.Fprintf(b, "**Risk Statement:** %s\n\n", r.RiskStatement)
		if r.Mitigation != "" {
			fmt.Fprintf(b, "**Mitigation Strategy:** %s\n\n", r.Mitigation)
		}
		fmt.Fprintf(b, "**Owner:** %s\n\n", r.OwnerRole)
		b.WriteString("---\n\n")
	}
}

func writeFindingsSection(b *strings.Builder, snap snapshot) {
	b.WriteString("## Key Findings & Recommendations\n\n")

	withRisks := make(map[uuid.UUID]bool)
	for _, r := range snap.allRisks() {
		withRisks[r.SystemID] = true
	}
	withoutRisks := 0
	for _, s := range snap.systems {
		if !withRisks[s.SystemID] {
			withoutRisks++
		}
	}
	if withoutRisks > 0 {
		fmt.Fprintf(b, "- **Action Required:** %d system%s currently lack lifecycle risk register "+
			"entries. Risk assessment should be completed for all systems.\n", withoutRisks, plural(withoutRisks))
	}

	tier1 := 0
	for _, r := range snap.results {
		if r.RiskTier == model.Tier1 {
			tier1++
		}
	}
	if tier1 > 0 {
		fmt.Fprintf(b, "- **High-Risk Systems:** %d TIER_1 system%s require comprehensive governance "+
			"controls including independent validation, full documentation, security testing, and "+
			"continuous monitoring.\n", tier1, plural(tier1))
	}

	withDeps := 0
	for _, s := range snap.systems {
		if len(s.ExternalDependencies) > 0 {
			withDeps++
		}
	}
	if withDeps > 0 {
		fmt.Fprintf(b, "- **Vendor Risk:** %d system%s rely on external dependencies. Vendor risk "+
			"assessments and contingency plans should be maintained.\n", withDeps, plural(withDeps))
	}

	b.WriteString("- **Regular Review:** Risk tiering and lifecycle risk assessments should be " +
		"reviewed quarterly or whenever significant system changes occur.\n")
	b.WriteString("- **Control Implementation:** Verify that all required controls for each risk " +
		"tier are implemented and functioning as intended.\n")
	b.WriteString("- **Evidence Collection:** Maintain evidence of control effectiveness for audit " +
		"and compliance purposes.\n\n")
}
