package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eitrtech/azurestate/internal/engine"
	"github.com/eitrtech/azurestate/internal/model"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

func sampleReport(dryRun bool) *engine.RunReport {
	return &engine.RunReport{
		RunID:  "run-1",
		Name:   "prod-estate",
		DryRun: dryRun,
		Results: []model.ReconcileResult{
			{
				DescriptorID: "core-rg",
				Identity:     model.Identity{Kind: "resource_group", Name: "core"},
				Outcome:      model.OutcomeConverged,
				Action:       model.ActionCreate,
				Changed:      true,
				Comment:      "Resource group core has been created.",
				Duration:     1200 * time.Millisecond,
			},
			{
				DescriptorID: "core-vnet",
				Identity:     model.Identity{Kind: "virtual_network", ResourceGroup: "core", Name: "net1"},
				Outcome:      model.OutcomeConverged,
				Action:       model.ActionUpdate,
				Changed:      true,
				Comment:      "Virtual network net1 has been updated.",
				Diff: propdiff.Diff{Changes: []propdiff.Change{
					{Property: "dns_servers", Old: []string{}, New: []string{"10.0.0.4"}},
				}},
			},
			{
				DescriptorID: "stale-zone",
				Identity:     model.Identity{Kind: "dns_zone", ResourceGroup: "core", Name: "old.example.com"},
				Outcome:      model.OutcomeConverged,
				Action:       model.ActionNoOp,
				Comment:      "DNS zone old.example.com is already absent.",
			},
			{
				DescriptorID: "broken-sa",
				Identity:     model.Identity{Kind: "storage_account", ResourceGroup: "core", Name: "logs001"},
				Outcome:      model.OutcomeFailed,
				ErrKind:      "auth",
				Comment:      "Failed to fetch storage account logs001.",
			},
		},
	}
}

func TestRenderPlainListsEveryResource(t *testing.T) {
	t.Parallel()

	out := NewRenderer(false).Render(sampleReport(false))

	require.Contains(t, out, "azurestate • prod-estate")
	require.Contains(t, out, "+ resource_group core — Resource group core has been created.")
	require.Contains(t, out, "(1.2s)")
	require.Contains(t, out, "~ virtual_network core/net1")
	require.Contains(t, out, "~ dns_servers: [] -> [10.0.0.4]")
	require.Contains(t, out, "= dns_zone core/old.example.com")
	require.Contains(t, out, "✗ storage_account core/logs001")
}

func TestRenderSummaryCounts(t *testing.T) {
	t.Parallel()

	out := NewRenderer(false).Render(sampleReport(false))
	require.Contains(t, out, "2 applied: 1 created, 1 updated, 0 deleted, 1 unchanged, 1 failed")
}

func TestRenderDryRunSummary(t *testing.T) {
	t.Parallel()

	report := sampleReport(true)
	for i := range report.Results {
		if report.Results[i].Changed {
			report.Results[i].Outcome = model.OutcomePlanned
		}
	}

	out := NewRenderer(false).Render(report)
	require.Contains(t, out, "(dry-run)")
	require.Contains(t, out, "± resource_group core")
	require.Contains(t, out, "2 planned: 1 to create, 1 to update, 0 to delete, 1 unchanged")
}

func TestRenderStyledKeepsContent(t *testing.T) {
	t.Parallel()

	out := NewRenderer(true).Render(sampleReport(false))
	require.Contains(t, out, "prod-estate")
	require.Contains(t, out, "Resource group core has been created.")
}
