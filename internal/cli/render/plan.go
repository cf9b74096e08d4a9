package render

import (
	"fmt"
	"io"

	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PlanRenderer renders a dry run
type PlanRenderer struct {
	out  io.Writer
	json bool
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer, json bool) *PlanRenderer {
	return &PlanRenderer{out: out, json: json}
}

type planJSON struct {
	Network string          `json:"network"`
	ChainID uint64          `json:"chainId"`
	Deploys int             `json:"deploys"`
	Reuses  int             `json:"reuses"`
	Wires   int             `json:"wires"`
	Stages  []planStageJSON `json:"stages"`
}

type planStageJSON struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Group   string `json:"group,omitempty"`
	Action  string `json:"action"`
	Address string `json:"address,omitempty"`
	Args    string `json:"args"`
	Problem string `json:"problem,omitempty"`
}

// Render prints one line per stage in execution order
func (r *PlanRenderer) Render(plan *usecase.DeploymentPlan) error {
	if r.json {
		out := planJSON{
			Network: plan.Network.Name,
			ChainID: plan.Network.Chain.ChainID,
			Deploys: plan.Deploys,
			Reuses:  plan.Reuses,
			Wires:   plan.Wires,
		}
		for _, s := range plan.Stages {
			line := planStageJSON{
				Name:    s.Stage.Name,
				Kind:    string(s.Stage.Kind),
				Group:   s.Stage.Group,
				Action:  string(s.Action),
				Args:    s.Args,
				Problem: s.Problem,
			}
			if s.Address != (common.Address{}) {
				line.Address = s.Address.Hex()
			}
			out.Stages = append(out.Stages, line)
		}
		return WriteJSON(r.out, out)
	}

	fmt.Fprintln(r.out)
	headerStyle.Fprintf(r.out, "Plan for %s (chain %d)\n\n", plan.Network.Name, plan.Network.Chain.ChainID)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "Group", "Stage", "Action", "Address / Args"})
	for i, s := range plan.Stages {
		detail := s.Args
		if s.Action == usecase.ActionReuse {
			detail = formatAddress(s.Address)
		}
		if s.Problem != "" {
			detail = failureStyle.Sprint(s.Problem)
		}
		t.AppendRow(table.Row{
			faintStyle.Sprint(i + 1),
			faintStyle.Sprint(s.Stage.Group),
			s.Stage.Name,
			actionLabel(s.Action),
			detail,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft},
		{Number: 5, Align: text.AlignLeft},
	})
	t.Render()

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%d to deploy, %d to reuse, %d wiring calls\n", plan.Deploys, plan.Reuses, plan.Wires)
	if plan.HasProblems() {
		fmt.Fprintln(r.out, FormatWarning("Some stages would fail before broadcasting"))
	}
	return nil
}

func actionLabel(action usecase.PlannedAction) string {
	label := Title(string(action))
	switch action {
	case usecase.ActionDeploy:
		return successStyle.Sprint(label)
	case usecase.ActionReuse, usecase.ActionSkipWiring:
		return skippedStyle.Sprint(label)
	default:
		return label
	}
}
