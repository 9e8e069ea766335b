// Command genclasses compiles a YAML class manifest (see classes.yaml at
// the repository root) into a Go source file defining a ClassDescriptor
// table. It is the rt equivalent of the iolang project's cmd/mkaddon, which
// compiles addon.yaml manifests into Go addon-loader source.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"text/template"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v2"
)

// manifest is the top-level shape of classes.yaml.
type manifest struct {
	Classes []classEntry `yaml:"classes"`
}

// classEntry is one class's entry in the manifest.
type classEntry struct {
	Name                     string `yaml:"name"`
	ForbidsAssociatedObjects bool   `yaml:"forbidsAssociatedObjects"`
	UsesCustomRR             bool   `yaml:"usesCustomRR"`
	HasAllowsWeakReference   bool   `yaml:"hasAllowsWeakReference"`
}

func fail(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func main() {
	var pkgPath string
	flag.StringVar(&pkgPath, "pkg", "github.com/assocweak/rt", "import path of the package receiving the generated table")
	flag.Parse()
	if flag.NArg() != 2 {
		fail(os.Args[0], " [-pkg import/path] classes.yaml classtable_gen.go")
	}

	// Confirm the target package actually resolves before generating code
	// for it; a typo'd -pkg should fail loudly here rather than produce a
	// file nothing imports.
	cfg := &packages.Config{Mode: packages.NeedName}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		fail("error resolving package", pkgPath, ":", err)
	}
	if len(pkgs) == 0 || len(pkgs[0].Errors) > 0 {
		fail("package", pkgPath, "did not resolve cleanly")
	}

	b, err := ioutil.ReadFile(flag.Arg(0))
	if err != nil {
		fail(err)
	}
	var m manifest
	if err = yaml.Unmarshal(b, &m); err != nil {
		fail(err)
	}

	buf := &bytesBuffer{}
	if err = body.Execute(buf, m); err != nil {
		fail(err)
	}
	formatted, err := imports.Process(flag.Arg(1), buf.b, nil)
	if err != nil {
		fail("error formatting generated source:", err)
	}
	if err = ioutil.WriteFile(flag.Arg(1), formatted, 0644); err != nil {
		fail(err)
	}
}

// bytesBuffer is the minimal io.Writer template.Execute needs; it avoids an
// extra import for something this small.
type bytesBuffer struct {
	b []byte
}

func (w *bytesBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

var body = template.Must(template.New("classtable").Parse(source))

const source = `// Code generated by cmd/genclasses from classes.yaml; DO NOT EDIT.

package rt

// GeneratedClasses holds one ClassDescriptor per entry in classes.yaml.
var GeneratedClasses = []ClassDescriptor{
{{range .Classes}}	{
		Name:                     {{printf "%q" .Name}},
		ForbidsAssociatedObjects: {{.ForbidsAssociatedObjects}},
		UsesCustomRR:             {{.UsesCustomRR}},
		HasAllowsWeakReference:   {{.HasAllowsWeakReference}},
	},
{{end}}}
`
