package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Address book output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatTOML  = "toml"
)

// AddressesRenderer renders a network's address book
type AddressesRenderer struct {
	out    io.Writer
	format string
}

// NewAddressesRenderer creates a new address book renderer
func NewAddressesRenderer(out io.Writer, format string) (*AddressesRenderer, error) {
	format = strings.ToLower(format)
	switch format {
	case "":
		format = FormatTable
	case FormatTable, FormatJSON, FormatTOML:
	default:
		return nil, fmt.Errorf("unsupported format %q (want table, json or toml)", format)
	}
	return &AddressesRenderer{out: out, format: format}, nil
}

// Render writes the book in the configured format
func (r *AddressesRenderer) Render(book *usecase.AddressBook) error {
	switch r.format {
	case FormatJSON:
		return WriteJSON(r.out, addressMap(book))
	case FormatTOML:
		return r.renderTOML(book)
	default:
		return r.renderTable(book)
	}
}

func addressMap(book *usecase.AddressBook) map[string]string {
	out := make(map[string]string, len(book.Entries))
	for _, e := range book.Entries {
		out[string(e.Name)] = e.Address.Hex()
	}
	return out
}

// renderTOML emits a fragment that can be pasted into a network file
func (r *AddressesRenderer) renderTOML(book *usecase.AddressBook) error {
	doc := struct {
		DeployedAddress map[string]string `toml:"deployed_address"`
	}{DeployedAddress: addressMap(book)}

	if err := toml.NewEncoder(r.out).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}

func (r *AddressesRenderer) renderTable(book *usecase.AddressBook) error {
	if len(book.Entries) == 0 {
		fmt.Fprintf(r.out, "No addresses recorded for %s\n", book.Network)
		return nil
	}

	headerStyle.Fprintf(r.out, "%s (chain %d)\n", book.Network, book.ChainID)
	if !book.UpdatedAt.IsZero() {
		fmt.Fprintln(r.out, faintStyle.Sprintf("Registry updated %s", book.UpdatedAt.Format("2006-01-02 15:04:05 MST")))
	}
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Contract", "Address", "Source", "Explorer"})
	for _, e := range book.Entries {
		t.AppendRow(table.Row{
			string(e.Name),
			formatAddress(e.Address),
			faintStyle.Sprint(string(e.Source)),
			faintStyle.Sprint(e.ExplorerURL),
		})
	}
	t.Render()
	return nil
}
