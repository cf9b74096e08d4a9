package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// RunReportRenderer renders the outcome of a deploy or verify run
type RunReportRenderer struct {
	out  io.Writer
	json bool
}

// NewRunReportRenderer creates a new run report renderer
func NewRunReportRenderer(out io.Writer, json bool) *RunReportRenderer {
	return &RunReportRenderer{out: out, json: json}
}

// Render prints the per-stage table followed by the summary
func (r *RunReportRenderer) Render(report *domain.RunReport) error {
	if r.json {
		return WriteJSON(r.out, report)
	}

	fmt.Fprintln(r.out)
	headerStyle.Fprintf(r.out, "Run %s on %s (chain %d)\n", report.ID, report.Network, report.ChainID)
	if report.Deployer != (common.Address{}) {
		fmt.Fprintf(r.out, "Deployer: %s\n", report.Deployer.Hex())
	}
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "Stage", "Status", "Address", "Verification", "Tx"})
	for i, line := range report.Stages {
		t.AppendRow(table.Row{
			faintStyle.Sprint(i + 1),
			line.Name,
			stageLabel(line),
			formatAddress(line.Address),
			verificationLabel(line),
			formatHash(line.TxHash),
		})
	}
	t.Render()

	r.renderSummary(report)
	return nil
}

func (r *RunReportRenderer) renderSummary(report *domain.RunReport) {
	sum := report.Summary()

	fmt.Fprintln(r.out)
	parts := []string{
		fmt.Sprintf("%d deployed", sum.Deployed),
		fmt.Sprintf("%d reused", sum.Skipped),
		fmt.Sprintf("%d wired", sum.Wired),
	}
	if sum.Verified+sum.AlreadyVerified > 0 {
		parts = append(parts, fmt.Sprintf("%d verified", sum.Verified+sum.AlreadyVerified))
	}
	if sum.VerificationFailure > 0 {
		parts = append(parts, fmt.Sprintf("%d verification failures", sum.VerificationFailure))
	}
	if sum.Pending > 0 {
		parts = append(parts, fmt.Sprintf("%d not run", sum.Pending))
	}
	fmt.Fprintln(r.out, strings.Join(parts, ", "))

	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		fmt.Fprintln(r.out, faintStyle.Sprintf("Finished in %s", report.FinishedAt.Sub(report.StartedAt).Round(time.Second)))
	}

	if report.Status == domain.RunFailed {
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("Run failed: %s", report.Error)))
		return
	}
	fmt.Fprintln(r.out, FormatSuccess("Run complete"))
}

// stageLabel shows how a finished deploy stage got its address
func stageLabel(line *domain.StageReport) string {
	status := line.Status
	if line.Kind == domain.StageDeploy && status == domain.StatusDone {
		switch line.Resolution {
		case domain.ResolutionDeployed:
			status = domain.StatusDeployed
		case domain.ResolutionSkipped:
			status = domain.StatusSkipped
		}
	}
	return statusColor(status).Sprint(Title(string(status)))
}

func statusColor(status domain.StageStatus) *color.Color {
	switch status {
	case domain.StatusDone, domain.StatusDeployed:
		return successStyle
	case domain.StatusSkipped:
		return skippedStyle
	case domain.StatusFailed:
		return failureStyle
	default:
		return faintStyle
	}
}

func verificationLabel(line *domain.StageReport) string {
	switch line.Verification {
	case domain.VerificationNone:
		if line.VerifyDetail != "" {
			return faintStyle.Sprint(line.VerifyDetail)
		}
		return ""
	case domain.VerificationVerified, domain.VerificationAlreadyVerified:
		return successStyle.Sprint(Title(string(line.Verification)))
	case domain.VerificationFailed:
		return failureStyle.Sprint(Title(string(line.Verification)))
	default:
		return faintStyle.Sprint(Title(string(line.Verification)))
	}
}

func formatAddress(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addressStyle.Sprint(addr.Hex())
}

func formatHash(hash common.Hash) string {
	if hash == (common.Hash{}) {
		return ""
	}
	hex := hash.Hex()
	return faintStyle.Sprint(hex[:10] + "…")
}
