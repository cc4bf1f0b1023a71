package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/groundwork/internal/common"
)

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpoint   = errors.New("invalid checkpoint tag")
)

const maxAutoCheckpoints = 5

// CheckpointInfo describes a saved copy of the database.
type CheckpointInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Answers       int       `json:"answers"`
	Revisions     int       `json:"revisions"`
	Rules         int       `json:"rules"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// CheckpointManager copies the database file into a checkpoints directory
// beside it and restores those copies.
type CheckpointManager struct {
	db             *sql.DB
	dbPath         string
	checkpointsDir string
}

// NewCheckpointManager returns a manager for the storage's database file.
// In-memory databases cannot be checkpointed.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, fmt.Errorf("%w: in-memory database has no file", ErrInvalidCheckpoint)
	}

	dbPath, err := filepath.Abs(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	checkpointsDir := filepath.Join(filepath.Dir(dbPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{db: s.db, dbPath: dbPath, checkpointsDir: checkpointsDir}, nil
}

func validateTag(tag string) error {
	if tag == "" || strings.ContainsAny(tag, `/\'";`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpoint, tag)
	}
	return nil
}

func (cm *CheckpointManager) paths(tag string) (string, string) {
	return filepath.Join(cm.checkpointsDir, tag+".db"), filepath.Join(cm.checkpointsDir, tag+".meta.json")
}

// Create writes a checkpoint named tag. An empty tag is generated from the
// current time.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + time.Now().Format("2006-01-02-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	dbFile, metaFile := cm.paths(tag)
	if _, err := os.Stat(dbFile); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	info := CheckpointInfo{ID: tag, Description: description, CreatedAt: time.Now().UTC()}
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	counts := map[string]*int{
		"standard_answers": &info.Answers,
		"answer_revisions": &info.Revisions,
		"coding_rules":     &info.Rules,
	}
	for table, dest := range counts {
		query, args, err := builder.Select("COUNT(*)").From(table).ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build count query: %w", err)
		}
		if err := cm.db.QueryRowContext(ctx, query, args...).Scan(dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}

	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// #nosec G201 - tag is validated and the directory is ours
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dbFile)); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	stat, err := os.Stat(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeMetadata(metaFile, info); err != nil {
		if rmErr := os.Remove(dbFile); rmErr != nil {
			common.LogError(rmErr, "failed to remove checkpoint after metadata failure", common.Fields{"checkpoint": tag})
		}
		return nil, fmt.Errorf("failed to save checkpoint metadata: %w", err)
	}

	common.LogInfo("Created checkpoint", common.Fields{"checkpoint": tag, "size": info.FileSize})
	return &info, nil
}

// AutoCheckpoint creates a checkpoint ahead of a destructive operation and
// keeps only the most recent automatic ones.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, operation string) (*CheckpointInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", operation, time.Now().Format("20060102-150405.000"))
	info, err := cm.Create(ctx, tag, "Automatic checkpoint before "+operation)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	_, metaFile := cm.paths(tag)
	info.IsAuto = true
	if err := writeMetadata(metaFile, *info); err != nil {
		return nil, fmt.Errorf("failed to mark auto-checkpoint: %w", err)
	}

	checkpoints, err := cm.List(ctx)
	if err != nil {
		return info, nil
	}
	autoCount := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount > maxAutoCheckpoints {
			if err := cm.Delete(ctx, cp.ID); err != nil {
				common.LogDebug("failed to prune auto-checkpoint", common.Fields{"checkpoint": cp.ID, "error": err.Error()})
			}
		}
	}
	return info, nil
}

// List returns all checkpoints, newest first. Unreadable metadata files
// are skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := readMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			continue
		}
		checkpoints = append(checkpoints, *info)
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})
	return checkpoints, nil
}

// Restore replaces the database file with the checkpoint's copy. The
// storage's connection is closed; callers must reopen the database.
func (cm *CheckpointManager) Restore(_ context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	dbFile, metaFile := cm.paths(tag)
	if _, err := os.Stat(dbFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, tag)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}
	if _, err := readMetadata(metaFile); err != nil {
		return fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	if err := verifyIntegrity(dbFile); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointCorrupted, err)
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	backup := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backup); err != nil {
		return fmt.Errorf("failed to back up current database: %w", err)
	}
	if err := copyFile(dbFile, cm.dbPath); err != nil {
		if restoreErr := copyFile(backup, cm.dbPath); restoreErr != nil {
			common.LogError(restoreErr, "failed to put back database after restore failure", common.Fields{"backup": backup})
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}
	if err := os.Remove(backup); err != nil {
		common.LogError(err, "failed to remove restore backup", common.Fields{"backup": backup})
	}
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(_ context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	dbFile, metaFile := cm.paths(tag)
	if err := os.Remove(dbFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, tag)
		}
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	if err := os.Remove(metaFile); err != nil && !os.IsNotExist(err) {
		common.LogDebug("failed to remove checkpoint metadata", common.Fields{"path": metaFile, "error": err.Error()})
	}
	return nil
}

func writeMetadata(path string, info CheckpointInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*CheckpointInfo, error) {
	// #nosec G304 - path is built from a validated tag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info CheckpointInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths are derived from the database location
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	destination, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
