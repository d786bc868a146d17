package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/yamlutil"
)

func sampleSummary() *html2png.Summary {
	return &html2png.Summary{
		RunID:     "3f1c2a9e-0000-4000-8000-000000000000",
		StartedAt: time.Date(2026, 1, 15, 9, 59, 58, 0, time.UTC),
		Duration:  1534 * time.Millisecond,
		Outcomes: []html2png.Outcome{
			{Index: 0, Job: html2png.Job{Source: "_html/01_cover.html", Output: "01_cover.png"}, Duration: 812 * time.Millisecond},
			{
				Index:    1,
				Job:      html2png.Job{Source: "_html/02_point.html", Output: "02_point.png"},
				Err:      html2png.ErrLoadTimeout,
				Duration: 700 * time.Millisecond,
			},
		},
	}
}

func TestNewRunReport(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	r := newRunReport(sampleSummary(), "rod", html2png.DefaultRegion(), now)

	if r.Status != html2png.StatusPartial || r.Total != 2 || r.Succeeded != 1 || r.Failed != 1 {
		t.Errorf("report counts = %s %d/%d/%d", r.Status, r.Total, r.Succeeded, r.Failed)
	}
	if r.Region != "1080x1080" || r.Engine != "rod" || r.Duration != "1.534s" {
		t.Errorf("report header = %+v", r)
	}
	if !r.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", r.GeneratedAt, now)
	}

	ok, failed := r.Jobs[0], r.Jobs[1]
	if ok.Status != jobStatusOK || ok.Kind != "" || ok.Error != "" {
		t.Errorf("ok job = %+v", ok)
	}
	if failed.Status != jobStatusFailed || failed.Kind != html2png.KindLoadTimeout || failed.Error == "" {
		t.Errorf("failed job = %+v", failed)
	}
}

func TestNewRunReport_SkippedJobs(t *testing.T) {
	t.Parallel()

	sum := sampleSummary()
	sum.Outcomes = append(sum.Outcomes, html2png.Outcome{
		Index:   2,
		Job:     html2png.Job{Source: "_html/03_end.html", Output: "03_end.png"},
		Err:     context.Canceled,
		Skipped: true,
	})

	r := newRunReport(sum, "rod", html2png.DefaultRegion(), time.Now())
	if got := r.Jobs[2]; got.Status != jobStatusSkipped || got.Kind != html2png.KindCanceled {
		t.Errorf("skipped job = %+v, want status %q", got, jobStatusSkipped)
	}
	if r.Jobs[1].Status != jobStatusFailed {
		t.Errorf("attempted job status = %q, want %q", r.Jobs[1].Status, jobStatusFailed)
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	r := newRunReport(sampleSummary(), "chromedp", html2png.DefaultRegion(), time.Now())

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "run.json")
		if err := writeReport(path, r); err != nil {
			t.Fatalf("writeReport() error = %v", err)
		}

		data, _ := os.ReadFile(path)
		var got runReport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("report is not JSON: %v\n%s", err, data)
		}
		if got.RunID != r.RunID || len(got.Jobs) != 2 || got.Jobs[1].Kind != html2png.KindLoadTimeout {
			t.Errorf("decoded report = %+v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "run.yml")
		if err := writeReport(path, r); err != nil {
			t.Fatalf("writeReport() error = %v", err)
		}

		data, _ := os.ReadFile(path)
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			t.Fatalf("expected YAML, got JSON:\n%s", data)
		}
		var got runReport
		if err := yamlutil.Unmarshal(data, &got); err != nil {
			t.Fatalf("report is not YAML: %v\n%s", err, data)
		}
		if got.Status != html2png.StatusPartial || got.Jobs[0].Output != "01_cover.png" {
			t.Errorf("decoded report = %+v", got)
		}
	})

	t.Run("unwritable", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := writeReport(dir, r); !errors.Is(err, ErrWriteReport) {
			t.Errorf("writeReport(dir) = %v, want ErrWriteReport", err)
		}
	})
}
