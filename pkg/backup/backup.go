// Package backup converts the full entity set to and from the
// versioned JSON document used for manual export/import.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/zenflowapp/zenflow/pkg/store"
	"github.com/zenflowapp/zenflow/pkg/task"
)

// Version is the current backup document version.
const Version = 1

var ErrMalformed = errors.New("malformed backup document")

// Document is the wire format. Note the logs key: the entity is
// TimeLog but the document has always called the array "logs".
type Document struct {
	Version    int            `json:"version"`
	ExportedAt string         `json:"exportedAt"`
	Tasks      []task.Task    `json:"tasks"`
	Projects   []task.Project `json:"projects"`
	Tags       []task.Tag     `json:"tags"`
	Logs       []task.TimeLog `json:"logs"`
}

type Codec struct {
	store *store.Store
	log   *log.Logger
}

func New(s *store.Store, logger *log.Logger) *Codec {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Codec{store: s, log: logger}
}

// Snapshot reads all four collections into a value document with no
// references back to the store.
func (c *Codec) Snapshot(ctx context.Context) (Document, error) {
	tasks, err := c.store.Tasks(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export tasks: %w", err)
	}
	projects, err := c.store.Projects(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export projects: %w", err)
	}
	tags, err := c.store.Tags(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export tags: %w", err)
	}
	logs, err := c.store.Logs(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export time logs: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	if projects == nil {
		projects = []task.Project{}
	}
	if tags == nil {
		tags = []task.Tag{}
	}
	if logs == nil {
		logs = []task.TimeLog{}
	}
	return Document{
		Version:    Version,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tasks:      tasks,
		Projects:   projects,
		Tags:       tags,
		Logs:       logs,
	}, nil
}

// Export serializes the snapshot as indented UTF-8 JSON.
func (c *Codec) Export(ctx context.Context) ([]byte, error) {
	doc, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	c.log.WithFields(map[string]interface{}{
		"tasks": len(doc.Tasks),
		"bytes": len(data),
	}).Info("backup exported")
	return data, nil
}

// Import parses a backup document and merges the arrays it carries
// into the store. Arrays absent from the document leave their
// collections untouched; the merge is all-or-nothing and never clears
// anything.
func (c *Codec) Import(ctx context.Context, data []byte) error {
	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	snap := store.Snapshot{
		Tasks:    doc.Tasks,
		Projects: doc.Projects,
		Tags:     doc.Tags,
		Logs:     doc.Logs,
	}
	if err := c.store.BulkMerge(ctx, snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	c.log.WithField("tasks", len(doc.Tasks)).Info("backup imported")
	return nil
}

// Filename returns the conventional backup file name for a given day,
// e.g. zenflow-backup-2026-08-31.json.
func Filename(now time.Time) string {
	return "zenflow-backup-" + now.Format("2006-01-02") + ".json"
}

// ExportToFile writes the backup document to path.
func (c *Codec) ExportToFile(ctx context.Context, path string) error {
	data, err := c.Export(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o660); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportFromFile reads and merges the backup document at path.
func (c *Codec) ImportFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	return c.Import(ctx, data)
}
