package status

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// RenderJSON writes the report as indented JSON
func (r *Report) RenderJSON(out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// RenderYAML writes the report as YAML
func (r *Report) RenderYAML(out io.Writer) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(r)
}

// RenderTable writes the report as a human-readable table
func (r *Report) RenderTable(out io.Writer) error {
	fmt.Fprintf(out, "Environment: %s (%s, %s)\n\n", r.Environment, r.Project, r.Region)

	if !r.StateFound {
		color.Yellow("No infrastructure found. Deploy with: sloth-secrets apply %s", r.Environment)
		return nil
	}

	color.Cyan("Terraform outputs:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for name, value := range r.Outputs {
		fmt.Fprintf(w, "  %s\t%s\n", name, value)
	}
	w.Flush()
	fmt.Fprintln(out)

	if r.VPC != nil {
		color.Cyan("VPC:")
		fmt.Fprintf(out, "  %s  %s  %s\n\n", r.VPC.ID, r.VPC.State, r.VPC.CIDR)
	}

	color.Cyan("Helm releases:")
	if len(r.Releases) == 0 {
		color.Yellow("  none installed")
	} else {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tNAMESPACE\tSTATUS\tCHART")
		for _, rel := range r.Releases {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", rel.Name, rel.Namespace, rel.Status, rel.Chart)
		}
		w.Flush()
	}
	fmt.Fprintln(out)

	color.Cyan("Demo workloads:")
	if len(r.Workloads) == 0 {
		color.Yellow("  none deployed")
	} else {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAMESPACE\tNAME\tREADY")
		for _, wl := range r.Workloads {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", wl.Namespace, wl.Name, wl.Ready)
		}
		w.Flush()
	}

	return nil
}
