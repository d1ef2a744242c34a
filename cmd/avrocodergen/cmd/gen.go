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

package cmd

import (
	"bytes"
	"context"
	"go/token"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/erikogenvik/beam-avrocoder/internal/environment"
	"github.com/erikogenvik/beam-avrocoder/internal/errors"
	"github.com/erikogenvik/beam-avrocoder/pkg/avrocoder/gen"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const toolName = "avrocodergen"

var errStale = errors.New("registration file is out of date; run avrocodergen gen")

var (
	configPath string
	output     string
	check      bool
	cfg        *Config

	genCmd = &cobra.Command{
		Use:     "gen [DIR...]",
		Short:   "Write the Avro coded type declarations of each package directory",
		PreRunE: genPreE,
		RunE:    genE,
	}
)

func init() {
	genCmd.Flags().StringVar(&configPath, "config", environment.Config.Value(), "YAML file with generator settings")
	genCmd.Flags().StringVar(&output, "output", "", "name of the generated file in each package directory")
	genCmd.Flags().BoolVar(&check, "check", false, "fail if a generated file is missing or out of date instead of writing it")
}

func genPreE(cmd *cobra.Command, _ []string) error {
	var err error
	if cfg, err = loadConfig(configPath); err != nil {
		return err
	}
	if err := cfg.applyEnvironment(); err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = output
	}
	if cmd.Flags().Changed("check") {
		cfg.Check = check
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if filepath.Base(cfg.Output) != cfg.Output {
		return errors.Errorf("output %q must be a file name, not a path", cfg.Output)
	}
	return nil
}

func genE(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Packages
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	results, err := generateAll(cmd.Context(), dirs, cfg.Output, cfg.Check)
	for _, r := range results {
		if r == nil {
			continue
		}
		switch {
		case r.removed:
			log.Printf("%v: no coded types, removed %v", r.dir, r.path)
		case len(r.types) == 0:
			log.Printf("%v: no coded types", r.dir)
		case cfg.Check:
			log.Printf("%v: %d coded types, up to date", r.dir, len(r.types))
		default:
			log.Printf("%v: wrote %v with %d coded types (%v)", r.dir, r.path, len(r.types), humanize.Bytes(uint64(r.size)))
		}
	}
	return err
}

// result describes the generator output for one package directory.
type result struct {
	dir   string
	path  string
	types   []string
	size    int
	removed bool
}

// generateAll runs generate for every directory concurrently. Results are in
// the order of dirs; a failed directory leaves a nil entry.
func generateAll(ctx context.Context, dirs []string, out string, check bool) ([]*result, error) {
	results := make([]*result, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := generate(dir, out, check)
			if err != nil {
				return errors.WithContextf(err, "generating %v", dir)
			}
			results[i] = r
			return nil
		})
	}
	return results, g.Wait()
}

// generate writes, or in check mode verifies, the declaration file of the
// package in dir. A package without coded types must have no such file.
func generate(dir, out string, check bool) (*result, error) {
	fset := token.NewFileSet()
	files, err := gen.ParseDir(fset, dir, out)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no Go files in %v", dir)
	}
	pkg, types, err := gen.Extract(fset, files)
	if err != nil {
		return nil, err
	}
	r := &result{dir: dir, path: filepath.Join(dir, out), types: types}
	if len(types) == 0 {
		return r, removeStale(r, check)
	}

	var buf bytes.Buffer
	if err := gen.Generate(&buf, &gen.Top{FileName: out, ToolName: toolName, Package: pkg, Types: types}); err != nil {
		return nil, err
	}
	r.size = buf.Len()

	if check {
		existing, err := os.ReadFile(r.path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if !bytes.Equal(existing, buf.Bytes()) {
			return nil, errors.Wrapf(errStale, "%v", r.path)
		}
		return r, nil
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0644); err != nil {
		return nil, err
	}
	return r, nil
}

// removeStale deletes a leftover declaration file of a package that has no
// coded types anymore. In check mode its presence is an error.
func removeStale(r *result, check bool) error {
	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if check {
		return errors.Wrapf(errStale, "%v declares types its package no longer has", r.path)
	}
	if err := os.Remove(r.path); err != nil {
		return err
	}
	r.removed = true
	return nil
}
