package adapters

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

// Files written by OutputFileAdapter.
const (
	BundlesLockFile = "bundles.lock"
	ReportFile      = "bundles.yaml"
	FeaturesFile    = "features.yaml"
	GraphDOTFile    = "dependency-graph.dot"
	GraphSVGFile    = "dependency-graph.svg"
)

type OutputFileAdapter struct {
	Dir string
}

func NewOutputFileAdapter(dir string) OutputFileAdapter {
	return OutputFileAdapter{Dir: dir}
}

// WriteBundlesLock writes one name=version line per bundle, sorted.
func (a OutputFileAdapter) WriteBundlesLock(bundles []types.ResolvedBundle) error {
	path, err := a.ensurePath(BundlesLockFile)
	if err != nil {
		return err
	}
	var lines []string
	for _, bundle := range bundles {
		lines = append(lines, fmt.Sprintf("%s=%s", bundle.Name, bundle.Version))
	}
	sort.Strings(lines)
	return a.write(path, []byte(strings.Join(lines, "\n")))
}

func (a OutputFileAdapter) WriteReport(report types.ResolutionReport) error {
	path, err := a.ensurePath(ReportFile)
	if err != nil {
		return err
	}
	ordered := append([]types.ResolvedBundle(nil), report.Bundles...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].Version < ordered[j].Version
	})
	report.Bundles = ordered
	return a.writeYAML(path, report)
}

func (a OutputFileAdapter) WriteFeatures(features map[string][]string) error {
	path, err := a.ensurePath(FeaturesFile)
	if err != nil {
		return err
	}
	if features == nil {
		features = map[string][]string{}
	}
	return a.writeYAML(path, features)
}

func (a OutputFileAdapter) WriteGraphDOT(root string, edges []types.GraphEdge) (string, error) {
	path, err := a.ensurePath(GraphDOTFile)
	if err != nil {
		return "", err
	}
	dot := graphDOT(root, edges)
	if err := a.write(path, []byte(dot)); err != nil {
		return "", err
	}
	return dot, nil
}

func (a OutputFileAdapter) WriteGraphSVG(svg []byte) error {
	path, err := a.ensurePath(GraphSVGFile)
	if err != nil {
		return err
	}
	return a.write(path, svg)
}

// graphDOT renders edges as a Graphviz digraph with the root drawn apart.
func graphDOT(root string, edges []types.GraphEdge) string {
	var buf bytes.Buffer
	buf.WriteString("digraph bundles {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	fmt.Fprintf(&buf, "  %q [shape=doubleoctagon, fillcolor=lightgrey];\n", root)
	for _, edge := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", edge.From, edge.To)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func (a OutputFileAdapter) writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode output").
			WithCause(err)
	}
	return a.write(path, data)
}

func (a OutputFileAdapter) write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write %s", filepath.Base(path))).
			WithCause(err)
	}
	return nil
}

func (a OutputFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.OutputPort = OutputFileAdapter{}
