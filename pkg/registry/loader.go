package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/tourguide/pkg/debug"
	"github.com/vanderheijden86/tourguide/pkg/model"
)

// File is the on-disk shape of a tour definition file.
type File struct {
	Tours []model.Tour `yaml:"tours" json:"tours"`
}

// LoadResult is the outcome of loading one definition file.
type LoadResult struct {
	Path  string
	Tours []model.Tour
	Error error
}

// IsTourFile reports whether path has a supported extension.
func IsTourFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// ParseFile reads a YAML or JSON tour file, chosen by extension.
func ParseFile(path string) ([]model.Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes a tour file body.
func Parse(data []byte, isJSON bool) ([]model.Tour, error) {
	var f File
	if isJSON {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing tours: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing tours: %w", err)
		}
	}
	return f.Tours, nil
}

// Expand turns files and directories into a sorted list of tour files.
// Directories are scanned one level deep.
func Expand(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("tour path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && IsTourFile(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Load reads every tour file under paths concurrently and builds a registry.
// Tours keep file order, then in-file order. Any unreadable file or invalid
// tour fails the whole load, so a half-loaded catalog is never returned.
func Load(ctx context.Context, paths ...string) (*Registry, []LoadResult, error) {
	defer debug.LogEnterExit("registry.Load")()

	files, err := Expand(paths...)
	if err != nil {
		return nil, nil, err
	}

	results, err := loadFilesParallel(ctx, files)
	if err != nil {
		return nil, results, fmt.Errorf("loading tour files: %w", err)
	}

	var tours []model.Tour
	for _, res := range results {
		if res.Error != nil {
			return nil, results, res.Error
		}
		tours = append(tours, res.Tours...)
	}
	debug.Log("loaded %d tours from %d files", len(tours), len(files))

	reg, err := New(tours...)
	if err != nil {
		return nil, results, err
	}
	return reg, results, nil
}

// loadFilesParallel parses files concurrently using errgroup. Per-file errors
// land in the results; only context cancellation is returned.
func loadFilesParallel(ctx context.Context, files []string) ([]LoadResult, error) {
	results := make([]LoadResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tours, err := ParseFile(path)
			results[i] = LoadResult{Path: path, Tours: tours, Error: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
