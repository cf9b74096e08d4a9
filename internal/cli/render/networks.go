package render

import (
	"fmt"
	"io"

	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out  io.Writer
	json bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, json bool) *NetworksRenderer {
	return &NetworksRenderer{out: out, json: json}
}

type networkJSON struct {
	Name      string `json:"name"`
	ChainID   uint64 `json:"chainId,omitempty"`
	Explorer  string `json:"explorer,omitempty"`
	Contracts int    `json:"contracts"`
	Error     string `json:"error,omitempty"`
}

// RenderNetworksList renders the configured networks with their registry size
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if r.json {
		out := make([]networkJSON, 0, len(result.Networks))
		for _, n := range result.Networks {
			line := networkJSON{Name: n.Name, ChainID: n.ChainID, Explorer: n.Explorer, Contracts: n.Deployed}
			if n.Error != nil {
				line.Error = n.Error.Error()
			}
			out = append(out, line)
		}
		return WriteJSON(r.out, out)
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No network files found in networks/")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"", "Network", "Chain ID", "Contracts", "Explorer"})
	for _, network := range result.Networks {
		if network.Error != nil {
			t.AppendRow(table.Row{"❌", network.Name, "", "", failureStyle.Sprintf("Error: %v", network.Error)})
			continue
		}
		chainID := "any"
		if network.ChainID != 0 {
			chainID = fmt.Sprintf("%d", network.ChainID)
		}
		t.AppendRow(table.Row{"✅", network.Name, chainID, network.Deployed, faintStyle.Sprint(network.Explorer)})
	}
	t.Render()
	return nil
}
