package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
)

var (
	greenStyle  = color.New(color.FgGreen)
	yellowStyle = color.New(color.FgYellow)
	redStyle    = color.New(color.FgRed, color.Bold)
	faintStyle  = color.New(color.Faint)
)

// DeployProgress prints one line per finished stage and shows a spinner
// while transactions are pending.
type DeployProgress struct {
	out     io.Writer
	spinner *SpinnerProgressReporter
	total   int
}

// NewDeployProgress creates a new deploy progress reporter
func NewDeployProgress(out io.Writer) *DeployProgress {
	return &DeployProgress{
		out:     out,
		spinner: NewSpinnerProgressReporter(out),
	}
}

// OnProgress handles progress events for deploy, verify and plan runs
func (p *DeployProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.EventRunStarted:
		p.total = event.Total
		if report, ok := event.Metadata.(*domain.RunReport); ok {
			fmt.Fprintf(p.out, "Run %s on %s (%d stages)\n\n", faintStyle.Sprint(report.ID), report.Network, p.total)
		}

	case usecase.EventStageFinished:
		p.spinner.Stop()
		if line, ok := event.Metadata.(*domain.StageReport); ok {
			p.printStage(event.Current, event.Total, line)
		}

	case usecase.EventRunCompleted, "plan_created":
		p.spinner.Stop()

	case usecase.EventStageTransition, usecase.EventVerification:
		// reflected in the stage line once the stage finishes

	default:
		p.spinner.OnProgress(ctx, event)
	}
}

// printStage renders "[ 3/48] SKIPPED   WETH  0x...  already-verified"
func (p *DeployProgress) printStage(current, total int, line *domain.StageReport) {
	width := len(fmt.Sprint(total))
	prefix := faintStyle.Sprintf("[%*d/%d]", width, current, total)

	label := line.Status
	if line.Kind == domain.StageDeploy && line.Status == domain.StatusDone {
		switch line.Resolution {
		case domain.ResolutionDeployed:
			label = domain.StatusDeployed
		case domain.ResolutionSkipped:
			label = domain.StatusSkipped
		}
	}
	status := statusStyle(label).Sprintf("%-9s", label)
	detail := ""
	switch {
	case line.Status == domain.StatusFailed:
		detail = redStyle.Sprint(line.Error)
	case line.Kind == domain.StageDeploy && line.Address != (common.Address{}):
		detail = line.Address.Hex()
		if line.Verification != domain.VerificationNone {
			detail += "  " + verificationStyle(line.Verification).Sprint(line.Verification)
		}
	case line.VerifyDetail != "":
		detail = faintStyle.Sprint(line.VerifyDetail)
	}

	fmt.Fprintf(p.out, "%s %s %-32s %s\n", prefix, status, line.Name, detail)
}

func statusStyle(status domain.StageStatus) *color.Color {
	switch status {
	case domain.StatusDone, domain.StatusDeployed:
		return greenStyle
	case domain.StatusSkipped:
		return yellowStyle
	case domain.StatusFailed:
		return redStyle
	default:
		return faintStyle
	}
}

func verificationStyle(outcome domain.VerificationOutcome) *color.Color {
	switch outcome {
	case domain.VerificationVerified, domain.VerificationAlreadyVerified:
		return greenStyle
	case domain.VerificationFailed:
		return redStyle
	default:
		return faintStyle
	}
}

// Info forwards info messages to the spinner
func (p *DeployProgress) Info(message string) {
	p.spinner.Info(message)
}

// Error forwards error messages to the spinner
func (p *DeployProgress) Error(message string) {
	p.spinner.Error(message)
}

// Ensure DeployProgress implements ProgressSink
var _ usecase.ProgressSink = (*DeployProgress)(nil)
