// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gen finds struct types that embed avrocoder.Coded in Go sources
// and writes the init() code declaring them to the avrocoder catalog.
//
// The generated file replaces a runtime scan of the package: at startup
// the declared types are already known, and avrocoder.RegisterPackage only
// filters them by package path.
package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
)

// AvrocoderImport is the import path of the package declaring the marker.
var AvrocoderImport = "github.com/erikogenvik/beam-avrocoder/pkg/avrocoder"

// markerName is the identifier of the marker type in AvrocoderImport.
const markerName = "Coded"

// Top is the top level input into the registration template.
type Top struct {
	FileName, ToolName, Package string

	Types []string // the plain names of the marked types.
}

// ParseDir parses the Go files of the package in dir that the default build
// context selects, honoring file name suffixes and build constraints. Test
// files and the file named skip, usually a previous generator output, are
// left out.
func ParseDir(fset *token.FileSet, dir, skip string) ([]*ast.File, error) {
	return parseDir(&build.Default, fset, dir, skip)
}

func parseDir(ctxt *build.Context, fset *token.FileSet, dir, skip string) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == skip {
			continue
		}
		if ok, err := ctxt.MatchFile(dir, name); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Extract returns the package name of files and the names of the struct types
// they declare that embed the marker. Generic types are skipped, since
// reflect has no type for an uninstantiated generic.
func Extract(fset *token.FileSet, files []*ast.File) (string, []string, error) {
	var pkg string
	var types []string
	for _, f := range files {
		if pkg == "" {
			pkg = f.Name.Name
		} else if pkg != f.Name.Name {
			return "", nil, fmt.Errorf("%v has mismatched package, got %q, want %q", fset.Position(f.Package), f.Name.Name, pkg)
		}
		local, ok := markerImport(f)
		if !ok {
			continue
		}
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.TypeParams != nil || ts.Assign.IsValid() {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				if embedsMarker(st, local) {
					types = append(types, ts.Name.Name)
				}
			}
		}
	}
	if pkg == "" {
		return "", nil, fmt.Errorf("no package found in %d files", len(files))
	}
	sort.Strings(types)
	return pkg, types, nil
}

// markerImport returns the name f uses for AvrocoderImport. A dot import
// yields the empty string.
func markerImport(f *ast.File) (string, bool) {
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != AvrocoderImport {
			continue
		}
		if imp.Name == nil {
			return "avrocoder", true
		}
		switch imp.Name.Name {
		case "_":
			return "", false
		case ".":
			return "", true
		default:
			return imp.Name.Name, true
		}
	}
	return "", false
}

func embedsMarker(st *ast.StructType, local string) bool {
	for _, field := range st.Fields.List {
		if len(field.Names) != 0 {
			continue
		}
		switch t := field.Type.(type) {
		case *ast.SelectorExpr:
			if x, ok := t.X.(*ast.Ident); ok && local != "" && x.Name == local && t.Sel.Name == markerName {
				return true
			}
		case *ast.Ident:
			if local == "" && t.Name == markerName {
				return true
			}
		}
	}
	return false
}

// Generate writes the gofmt'ed registration file for top to w.
func Generate(w io.Writer, top *Top) error {
	var buf bytes.Buffer
	if err := registrationTemplate.Execute(&buf, top); err != nil {
		return err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("formatting generated code: %v\n%s", err, buf.Bytes())
	}
	n, err := w.Write(src)
	if err != nil && n < len(src) {
		return fmt.Errorf("short write of data got %d, want %d", n, len(src))
	}
	return err
}

// Import is the avrocoder import path the generated file uses.
func (t *Top) Import() string {
	return AvrocoderImport
}

var registrationTemplate = template.Must(template.New("registrations").Parse(`// Code generated by {{.ToolName}}. DO NOT EDIT.
// File: {{.FileName}}

package {{.Package}}

import (
	"reflect"

	"{{.Import}}"
)

func init() {
	avrocoder.Declare(
{{- range $x := .Types}}
		reflect.TypeOf((*{{$x}})(nil)).Elem(),
{{- end}}
	)
}
`))
