// Package filestore implements flat-file persistence for weekly reports and
// newsletter subscriptions. Files are replaced atomically so readers never
// observe a partial write.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReportStore = (*ReportStore)(nil)

const reportPrefix = "weekly-"

// ReportStore persists weekly reports as paired JSON and Markdown files under
// <dataDir>/reports, both named by the shared "weekly-<weekEnd>" key.
type ReportStore struct {
	dir string
}

// NewReportStore creates a ReportStore rooted at <dataDir>/reports.
func NewReportStore(dataDir string) *ReportStore {
	return &ReportStore{dir: filepath.Join(dataDir, "reports")}
}

// Save writes the structured report and its markdown rendering under one key.
// If the markdown write fails after the JSON write succeeded, the JSON file is
// removed so the pair is never half-written.
func (s *ReportStore) Save(_ context.Context, report model.WeeklyReport, markdown string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	filename := report.Filename()
	jsonPath := filepath.Join(s.dir, filename+".json")
	mdPath := filepath.Join(s.dir, filename+".md")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report %s: %w", filename, err)
	}

	if err := atomic.WriteFile(jsonPath, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write report %s: %w", filename, err)
	}

	if err := atomic.WriteFile(mdPath, strings.NewReader(markdown)); err != nil {
		_ = os.Remove(jsonPath)
		return "", fmt.Errorf("write report markdown %s: %w", filename, err)
	}

	return filename, nil
}

// Read returns the structured report and markdown stored under the key.
// A missing artifact on either side fails as one *model.NotFoundError.
func (s *ReportStore) Read(_ context.Context, filename string) (model.WeeklyReport, string, error) {
	var report model.WeeklyReport

	if filepath.Base(filename) != filename || !strings.HasPrefix(filename, reportPrefix) {
		return report, "", &model.NotFoundError{Kind: "report", Key: filename}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename+".json"))
	if os.IsNotExist(err) {
		return report, "", &model.NotFoundError{Kind: "report", Key: filename}
	}
	if err != nil {
		return report, "", fmt.Errorf("read report %s: %w", filename, err)
	}

	markdown, err := os.ReadFile(filepath.Join(s.dir, filename+".md"))
	if os.IsNotExist(err) {
		return report, "", &model.NotFoundError{Kind: "report", Key: filename}
	}
	if err != nil {
		return report, "", fmt.Errorf("read report markdown %s: %w", filename, err)
	}

	if err := json.Unmarshal(data, &report); err != nil {
		return report, "", fmt.Errorf("parse report %s: %w", filename, err)
	}

	return report, string(markdown), nil
}

// List returns all stored report keys, newest first. Keys are ordered by
// their parsed end date rather than raw string comparison, so ordering stays
// correct even if the key format ever stops sorting lexicographically.
func (s *ReportStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		filenames = append(filenames, strings.TrimSuffix(name, ".json"))
	}

	sort.Slice(filenames, func(i, j int) bool {
		di, erri := time.Parse("2006-01-02", strings.TrimPrefix(filenames[i], reportPrefix))
		dj, errj := time.Parse("2006-01-02", strings.TrimPrefix(filenames[j], reportPrefix))
		if erri != nil || errj != nil {
			return filenames[i] > filenames[j]
		}
		return di.After(dj)
	})

	return filenames, nil
}
