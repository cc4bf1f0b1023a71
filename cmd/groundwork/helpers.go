package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/config"
	"github.com/Veraticus/groundwork/internal/engine"
	"github.com/Veraticus/groundwork/internal/segment"
	"github.com/Veraticus/groundwork/internal/storage"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := config.DatabasePath(viper.GetString("database.path"))
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// codingConfig loads the coding limits, falling back to defaults.
func codingConfig() config.CodingConfig {
	cfg, err := config.LoadCodingConfig()
	if err != nil {
		common.LogWarn("invalid coding configuration, using defaults", common.Fields{"error": err.Error()})
		return config.DefaultCodingConfig()
	}
	return *cfg
}

// loadCodes reads a structured-code file. A missing file yields an empty
// document when allowMissing is set.
func loadCodes(path string, allowMissing bool) (*codefile.Document, error) {
	limits := codetree.LimitsFromConfig(codingConfig())
	doc, err := codefile.Load(path, limits)
	if err == nil {
		return doc, nil
	}
	if allowMissing && errors.Is(err, fs.ErrNotExist) {
		return &codefile.Document{Tree: codetree.New(limits)}, nil
	}
	return nil, common.NewUserError(fmt.Sprintf("Could not read codes file %s", path), err)
}

// newSession creates a session over tree using the configured segmenter.
func newSession(tree *codetree.Tree) *engine.Session {
	return engine.NewSession(tree, segment.New(codingConfig().MinSentenceLength))
}

// readTexts reads files concurrently. Keys are base names, so every file
// must have a distinct base name.
func readTexts(ctx context.Context, paths []string) (map[string]string, error) {
	contents := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path) // #nosec G304 - user supplied transcript
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			contents[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	texts := make(map[string]string, len(paths))
	for i, path := range paths {
		name := filepath.Base(path)
		if _, dup := texts[name]; dup {
			return nil, common.NewUserError(fmt.Sprintf("Two transcripts are named %s", name), common.ErrDuplicateEntry)
		}
		texts[name] = contents[i]
	}
	return texts, nil
}

// numberedName is the output file name for a numbered transcript.
func numberedName(file string) string {
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext) + ".numbered" + ext
}
