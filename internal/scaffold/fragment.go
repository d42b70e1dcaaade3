package scaffold

import (
	"bytes"
	"embed"
	"encoding/xml"
	"path/filepath"
	"text/template"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/options"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").Funcs(template.FuncMap{"xml": escapeXML}).ParseFS(templateFS, "templates/*.tmpl"),
)

const (
	DirectivesFile    = "rd.xml"
	PackageSourceFile = "nuget.config"
	ProjectExt        = ".csproj"
)

// Fragment is a named text block included when its predicate holds.
type Fragment struct {
	Name string
	When func(options.OptionSet) bool
}

func (f Fragment) included(o options.OptionSet) bool {
	return f.When == nil || f.When(o)
}

// Document is one output file assembled from fragments in declaration order.
type Document struct {
	Name      string
	Path      func(BuildTarget) string
	When      func(options.OptionSet) bool
	Fragments []Fragment
}

func always(options.OptionSet) bool { return true }

func aotEnabled(o options.OptionSet) bool { return o.AOT() }

func nativeAOT(o options.OptionSet) bool { return o.NativeAOTEnabled() }

func managed(o options.OptionSet) bool { return o.Runtime() == options.ManagedRuntime }

func managedAOT(o options.OptionSet) bool { return managed(o) && o.AOT() }

func cleanTargets(o options.OptionSet) bool { return o.CleanTargets() }

// Documents lists every file the assembler can produce, in output order.
// The fragment order within each document is part of the output format.
var Documents = []Document{
	{
		Name:      "directives",
		Path:      func(BuildTarget) string { return DirectivesFile },
		When:      always,
		Fragments: []Fragment{{Name: "rd-directives"}},
	},
	{
		Name: "project",
		Path: ProjectFileName,
		When: always,
		Fragments: []Fragment{
			{Name: "project-open"},
			{Name: "properties"},
			{Name: "wasi-properties", When: managed},
			{Name: "wasi-native-build", When: managedAOT},
			{Name: "assembly-properties"},
			{Name: "native-libraries"},
			{Name: "rd-xml"},
			{Name: "aot-native-libraries", When: nativeAOT},
			{Name: "aot-linker-args", When: nativeAOT},
			{Name: "aot-package-references", When: nativeAOT},
			{Name: "aot-wasm-sdk-check", When: nativeAOT},
			{Name: "aot-compile-cabi-realloc", When: nativeAOT},
			{Name: "clean-targets", When: cleanTargets},
			{Name: "project-close"},
		},
	},
	{
		Name:      "package-sources",
		Path:      func(BuildTarget) string { return PackageSourceFile },
		When:      aotEnabled,
		Fragments: []Fragment{{Name: "nuget-config"}},
	},
}

// ProjectFileName returns "<World>.csproj".
func ProjectFileName(t BuildTarget) string {
	return t.World.Camel + ProjectExt
}

// renderData is the value every fragment template executes against.
type renderData struct {
	Target  BuildTarget
	Options options.OptionSet
}

func (d renderData) AssemblyName() string { return d.Target.Name.Camel }

func (d renderData) Namespace() string { return d.Target.Name.Camel }

func (d renderData) ComponentTypeObject() string {
	return d.Target.World.Token + "_component_type.o"
}

func (d renderData) CabiReallocSource() string {
	return d.Target.World.Camel + "_cabi_realloc.c"
}

func (d renderData) CabiReallocObject() string {
	return d.Target.World.Camel + "_cabi_realloc.o"
}

func (d renderData) WasmPath() string {
	return filepath.Join(d.Target.OutputDir, d.AssemblyName()+".wasm")
}

// RenderFragment executes a single fragment regardless of its predicate.
func RenderFragment(name string, t BuildTarget, o options.OptionSet) (string, error) {
	var buf bytes.Buffer
	if err := renderInto(&buf, name, renderData{Target: t, Options: o}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderInto(buf *bytes.Buffer, name string, data renderData) error {
	tmpl := templates.Lookup(name + ".tmpl")
	if tmpl == nil {
		return errors.Newf("unknown fragment %q", name)
	}
	if err := tmpl.Execute(buf, data); err != nil {
		return errors.Wrapf(err, "rendering fragment %s", name)
	}
	return nil
}

func escapeXML(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
