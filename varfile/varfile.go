// Package varfile loads host variable namespaces from HCL files.
//
// A variable file has at most one project block and any number of design
// blocks, each labeled with the design's name:
//
//	project {
//	  freq = "4GHz"
//	}
//
//	design "HFSSDesign1" {
//	  thicknessSubstrate = "30mils"
//	  lambda             = "c0/$freq"
//	  widths             = ["1mm", "2mm"]
//	}
//
// HCL names cannot contain the project sigil, so every name in the project
// block is given one: freq above is the project variable $freq. Values are
// host expressions. Strings are used as written, numbers are written in their
// shortest form, and tuples become vectors like "[1mm,2mm]".
package varfile

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/zephyrtronium/hfssexpr"
	"github.com/zephyrtronium/hfssexpr/calc"
)

// ErrUnknownDesign indicates a design that is not in the variable file.
var ErrUnknownDesign = errors.New("unknown design")

// File is a parsed variable file.
type File struct {
	// Name is the file name used in diagnostics.
	Name string

	project map[string]string
	designs []design
}

type design struct {
	name string
	vars map[string]string
}

// hclVarFile is the top-level structure of a variable file for decoding.
type hclVarFile struct {
	Projects []*hclProject `hcl:"project,block"`
	Designs  []*hclDesign  `hcl:"design,block"`
}

type hclProject struct {
	Body hcl.Body `hcl:",remain"`
}

type hclDesign struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Parse parses a variable file from its source. filename is used only in
// diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse variable file %s: %w", filename, diags)
	}
	return decode(f, filename)
}

// ParseFile reads and parses a variable file.
func ParseFile(path string) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse variable file %s: %w", path, diags)
	}
	return decode(f, path)
}

func decode(f *hcl.File, filename string) (*File, error) {
	var parsed hclVarFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode variable file %s: %w", filename, diags)
	}
	if len(parsed.Projects) > 1 {
		return nil, fmt.Errorf("variable file %s has %d project blocks, want at most 1", filename, len(parsed.Projects))
	}

	r := File{Name: filename, project: make(map[string]string)}
	if len(parsed.Projects) == 1 {
		vars, err := attributes(parsed.Projects[0].Body)
		if err != nil {
			return nil, fmt.Errorf("project block in %s: %w", filename, err)
		}
		for name, def := range vars {
			r.project[string(calc.ProjectSigil)+name] = def
		}
	}
	for _, d := range parsed.Designs {
		if slices.ContainsFunc(r.designs, func(e design) bool { return e.name == d.Name }) {
			return nil, fmt.Errorf("variable file %s defines design %q more than once", filename, d.Name)
		}
		vars, err := attributes(d.Body)
		if err != nil {
			return nil, fmt.Errorf("design %q in %s: %w", d.Name, filename, err)
		}
		r.designs = append(r.designs, design{name: d.Name, vars: vars})
	}
	slog.Debug("Loaded variable file.", "file", filename, "project_vars", len(r.project), "designs", len(r.designs))
	return &r, nil
}

// attributes gets the host expression text of every attribute in a block.
func attributes(body hcl.Body) (map[string]string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	r := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		s, err := exprText(val)
		if err != nil {
			return nil, fmt.Errorf("variable %s at %s: %w", name, attr.Range, err)
		}
		r[name] = s
	}
	return r, nil
}

// exprText converts an HCL value to host expression text.
func exprText(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", errors.New("value is null")
	}
	if !val.IsWhollyKnown() {
		return "", errors.New("value is unknown")
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		return val.AsBigFloat().Text('g', -1), nil
	case ty.IsTupleType() || ty.IsListType():
		var b strings.Builder
		b.WriteByte('[')
		for it, i := val.ElementIterator(), 0; it.Next(); i++ {
			_, v := it.Element()
			s, err := exprText(v)
			if err != nil {
				return "", err
			}
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s)
		}
		b.WriteByte(']')
		return b.String(), nil
	default:
		return "", fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

// Designs returns the names of the designs in the file, in the order they
// appear.
func (f *File) Designs() []string {
	r := make([]string, len(f.designs))
	for i, d := range f.designs {
		r[i] = d.name
	}
	return r
}

// Vars creates a namespace holding the project variables and the variables of
// one design. If name is empty, the first design is used; if the file has no
// designs, the namespace holds only project variables.
func (f *File) Vars(name string) (*hfssexpr.Vars, error) {
	v := new(hfssexpr.Vars)
	for k, def := range f.project {
		v.Set(k, hfssexpr.New(def))
	}
	if name == "" && len(f.designs) == 0 {
		return v, nil
	}
	k := 0
	if name != "" {
		k = slices.IndexFunc(f.designs, func(d design) bool { return d.name == name })
		if k < 0 {
			return nil, fmt.Errorf("%w %q in %s", ErrUnknownDesign, name, f.Name)
		}
	}
	for n, def := range f.designs[k].vars {
		v.Set(n, hfssexpr.New(def))
	}
	return v, nil
}
