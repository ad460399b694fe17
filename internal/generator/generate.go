package generator

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/AndreyAkinshin/testrig/internal/config"
	"github.com/AndreyAkinshin/testrig/internal/containers"
	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/spec"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Test kinds accepted by Options.Type.
const (
	KindUnit        = "unit"
	KindIntegration = "integration"
	KindAll         = "all"
)

// Options controls what Generate scaffolds.
type Options struct {
	// Framework selects the template family: vitest, jest or pytest.
	Framework string
	// Type is unit, integration or all. Empty means all.
	Type string
	// Containers are started by integration scaffolds.
	Containers []config.Container
	// SpecsDir is where the spec document is written, relative to the
	// project root unless absolute. Empty uses spec.DefaultDir.
	SpecsDir string
}

// Result lists what Generate did. Paths are relative to the project root.
type Result struct {
	Analysis *Analysis
	Spec     spec.ComponentSpec
	SpecPath string
	Created  []string
	Skipped  []string
}

// templateData is the value every template is executed with.
type templateData struct {
	Component     string
	Subcomponent  string
	Type          string
	Instance      string
	Snake         string
	ImportPath    string
	FactoryModule string
	Framework     string
	Kind          string
	Containers    []containerData
}

type containerData struct {
	Name  string
	Var   string
	Image string
	Port  int
}

// plannedFile is one file Generate may write.
type plannedFile struct {
	path     string
	template string
	data     templateData
}

// Generate analyzes component under root, scaffolds missing test and factory
// files and writes the component's spec document. Existing test files are
// never overwritten. An existing spec keeps its description and
// dependencies; its file list is merged with the generated one.
func Generate(root, component string, opts Options) (*Result, error) {
	kinds, err := kindsFor(opts.Type)
	if err != nil {
		return nil, err
	}
	fw := strings.ToLower(opts.Framework)
	if fw == "" {
		fw = config.DefaultFramework
	}
	if fw != "vitest" && fw != "jest" && fw != "pytest" {
		return nil, testrigerrors.Configf("unsupported framework %q", opts.Framework)
	}

	analysis, err := Analyze(root, component)
	if err != nil {
		return nil, err
	}

	res := &Result{Analysis: analysis}
	var testFiles []string
	for i := range analysis.Subcomponents {
		sub := &analysis.Subcomponents[i]
		files := plan(component, *sub, fw, kinds, opts.Containers)
		for _, f := range files {
			if f.template != factoryTemplate(fw) {
				testFiles = append(testFiles, f.path)
				if sub.TestFile == "" {
					sub.TestFile = f.path
				}
			}
			created, err := writeIfMissing(root, f)
			if err != nil {
				return nil, err
			}
			if created {
				res.Created = append(res.Created, f.path)
			} else {
				res.Skipped = append(res.Skipped, f.path)
			}
		}
	}

	specsDir := opts.SpecsDir
	if specsDir == "" {
		specsDir = spec.DefaultDir
	}
	if !filepath.IsAbs(specsDir) {
		specsDir = filepath.Join(root, specsDir)
	}

	s, err := BuildSpec(specsDir, analysis, testFiles)
	if err != nil {
		return nil, err
	}
	specPath, err := spec.Write(specsDir, s)
	if err != nil {
		return nil, err
	}
	res.Spec = s
	res.SpecPath = specPath

	return res, nil
}

// BuildSpec assembles the spec document for an analysis. When specsDir
// already holds a document for the component, its description and
// dependencies are kept and its files are merged ahead of testFiles.
func BuildSpec(specsDir string, a *Analysis, testFiles []string) (spec.ComponentSpec, error) {
	s := spec.ComponentSpec{
		Component:     a.Component,
		Dependencies:  []string{},
		Subcomponents: a.Subcomponents,
	}

	existing, err := spec.LoadFile(filepath.Join(specsDir, spec.FileName(a.Component)))
	switch {
	case err == nil:
		s.Description = existing.Description
		s.Dependencies = append(s.Dependencies, existing.Dependencies...)
		s.Files = append(s.Files, existing.Files...)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return spec.ComponentSpec{}, err
	}

	seen := make(map[string]bool, len(s.Files))
	for _, f := range s.Files {
		seen[f] = true
	}
	for _, f := range testFiles {
		if !seen[f] {
			seen[f] = true
			s.Files = append(s.Files, f)
		}
	}
	if s.Files == nil {
		s.Files = []string{}
	}

	return s, nil
}

func kindsFor(t string) ([]string, error) {
	switch strings.ToLower(t) {
	case "", KindAll:
		return []string{KindUnit, KindIntegration}, nil
	case KindUnit:
		return []string{KindUnit}, nil
	case KindIntegration:
		return []string{KindIntegration}, nil
	default:
		return nil, testrigerrors.Configf("invalid test type %q (want unit, integration or all)", t)
	}
}

func factoryTemplate(fw string) string {
	if fw == "pytest" {
		return "factory.py.tmpl"
	}
	return "factory.ts.tmpl"
}

// plan lists the files scaffolded for one subcomponent. The factory comes
// first so test files can import it.
func plan(component string, sub spec.Subcomponent, fw string, kinds []string, list []config.Container) []plannedFile {
	data := templateData{
		Component:    component,
		Subcomponent: sub.Name,
		Type:         PascalCase(sub.Name),
		Instance:     CamelCase(sub.Name),
		Snake:        SnakeCase(sub.Name),
		Framework:    fw,
		Kind:         sub.Type,
	}
	for _, c := range list {
		data.Containers = append(data.Containers, containerData{
			Name:  c.Name,
			Var:   CamelCase(c.Name) + "Container",
			Image: containers.Image(c.Name),
			Port:  c.Port,
		})
	}

	if fw == "pytest" {
		for i := range data.Containers {
			data.Containers[i].Var = SnakeCase(data.Containers[i].Name) + "_container"
		}
		factory := SnakeCase(component) + "_" + data.Snake + "_factory"
		data.ImportPath = pyModulePath(sub.File)
		data.FactoryModule = factory

		files := []plannedFile{{
			path:     path.Join("tests/factories", factory+".py"),
			template: "factory.py.tmpl",
			data:     data,
		}}
		for _, k := range kinds {
			switch k {
			case KindUnit:
				files = append(files, plannedFile{
					path:     path.Join("tests/unit", component, "test_"+data.Snake+".py"),
					template: "unit.py.tmpl",
					data:     data,
				})
			case KindIntegration:
				files = append(files, plannedFile{
					path:     path.Join("tests/integration", component, "test_"+data.Snake+"_integration.py"),
					template: "integration.py.tmpl",
					data:     data,
				})
			}
		}
		return files
	}

	factory := component + "-" + sub.Name + ".factory"
	data.ImportPath = tsImportPath(sub.File)
	data.FactoryModule = factory

	files := []plannedFile{{
		path:     path.Join("tests/factories", factory+".ts"),
		template: "factory.ts.tmpl",
		data:     data,
	}}
	for _, k := range kinds {
		switch k {
		case KindUnit:
			files = append(files, plannedFile{
				path:     path.Join("tests/unit", component, sub.Name+".spec.ts"),
				template: "unit.ts.tmpl",
				data:     data,
			})
		case KindIntegration:
			files = append(files, plannedFile{
				path:     path.Join("tests/integration", component, sub.Name+".integration.spec.ts"),
				template: "integration.ts.tmpl",
				data:     data,
			})
		}
	}
	return files
}

// writeIfMissing renders f under root unless the file already exists.
func writeIfMissing(root string, f plannedFile) (bool, error) {
	dst := filepath.Join(root, filepath.FromSlash(f.path))
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", f.path, err)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, f.template, f.data); err != nil {
		return false, fmt.Errorf("render %s: %w", f.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", f.path, err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", f.path, err)
	}
	return true, nil
}
