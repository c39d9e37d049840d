package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"lessonplanner-ai/internal/contextutil"
	"lessonplanner-ai/internal/storage"
)

// ScannedModule is a prompt module file found under prompt_module/<kind>/.
type ScannedModule struct {
	Kind    storage.ModuleKind
	File    string // File name within the kind directory
	RelPath string // Relative to the media root, e.g. "prompt_module/tone/warm.txt"
	AbsPath string
}

var moduleExts = map[string]bool{".txt": true, ".md": true, ".markdown": true}

// ScanModules walks the module directories and returns every text file
// found, grouped by kind in composition order. Missing kind directories are
// skipped.
func (s *Store) ScanModules(ctx context.Context) ([]ScannedModule, error) {
	var scanned []ScannedModule

	for _, kind := range storage.ModuleKinds() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		kindDir := filepath.Join(s.root, modulesDir, string(kind))
		err := filepath.WalkDir(kindDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) && path == kindDir {
					return filepath.SkipDir
				}
				return fmt.Errorf("failed to access path %s: %w", path, err)
			}

			if strings.HasPrefix(d.Name(), ".") && path != kindDir {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !moduleExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
			}
			file, err := filepath.Rel(kindDir, path)
			if err != nil {
				return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
			}

			scanned = append(scanned, ScannedModule{
				Kind:    kind,
				File:    filepath.ToSlash(file),
				RelPath: filepath.ToSlash(rel),
				AbsPath: path,
			})
			return nil
		})
		if err != nil {
			return scanned, fmt.Errorf("failed to scan %s modules: %w", kind, err)
		}
	}

	return scanned, nil
}

// SyncModules scans the module directories and upserts every file into repo,
// taking titles and global flags from the manifest. It returns the number of
// modules synced.
func (s *Store) SyncModules(ctx context.Context, repo storage.ModuleStore, manifest Manifest) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	scanned, err := s.ScanModules(ctx)
	if err != nil {
		return 0, err
	}

	for _, sm := range scanned {
		// Modules without a manifest entry, philosophies included, are not global.
		module := storage.PromptModule{
			Kind:     sm.Kind,
			Title:    TitleFromFileName(sm.File),
			FilePath: sm.RelPath,
		}
		if entry, ok := manifest.Lookup(sm.Kind, sm.File); ok {
			if entry.Title != "" {
				module.Title = entry.Title
			}
			module.IsGlobal = entry.Global
		}
		if err := repo.Upsert(ctx, &module); err != nil {
			return 0, fmt.Errorf("failed to sync module %s: %w", sm.RelPath, err)
		}
		logger.DebugContext(ctx, "synced prompt module", "kind", module.Kind, "title", module.Title, "global", module.IsGlobal)
	}

	for _, e := range manifest.Modules {
		found := false
		for _, sm := range scanned {
			if sm.Kind == e.Kind && sm.File == e.File {
				found = true
				break
			}
		}
		if !found {
			logger.WarnContext(ctx, "manifest entry has no module file", "kind", e.Kind, "file", e.File)
		}
	}

	logger.InfoContext(ctx, "prompt modules synced", "count", len(scanned))
	return len(scanned), nil
}

// TitleFromFileName turns "inquiry_based-learning.txt" into
// "Inquiry Based Learning".
func TitleFromFileName(file string) string {
	base := filepath.Base(filepath.FromSlash(file))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return base
	}
	return strings.Join(words, " ")
}
