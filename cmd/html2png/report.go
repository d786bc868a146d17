package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/fileutil"
	"github.com/alnah/go-html2png/internal/yamlutil"
)

// Report file modes.
const (
	reportFilePerm = 0o644
	reportDirPerm  = 0o755
)

// runReport is the machine-readable record of one run.
type runReport struct {
	RunID       string      `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Engine      string      `json:"engine" yaml:"engine"`
	Region      string      `json:"region" yaml:"region"`
	StartedAt   time.Time   `json:"started_at" yaml:"started_at"`
	Duration    string      `json:"duration" yaml:"duration"`
	Status      string      `json:"status" yaml:"status"`
	Total       int         `json:"total" yaml:"total"`
	Succeeded   int         `json:"succeeded" yaml:"succeeded"`
	Failed      int         `json:"failed" yaml:"failed"`
	Jobs        []jobReport `json:"jobs" yaml:"jobs"`
}

type jobReport struct {
	Source   string `json:"source" yaml:"source"`
	Output   string `json:"output" yaml:"output"`
	Status   string `json:"status" yaml:"status"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	Duration string `json:"duration" yaml:"duration"`
}

// Per-job status values.
const (
	jobStatusOK      = "ok"
	jobStatusFailed  = "failed"
	jobStatusSkipped = "skipped"
)

func newRunReport(sum *html2png.Summary, engine string, region html2png.Region, now time.Time) *runReport {
	r := &runReport{
		RunID:       sum.RunID,
		GeneratedAt: now.UTC(),
		Engine:      engine,
		Region:      region.String(),
		StartedAt:   sum.StartedAt.UTC(),
		Duration:    sum.Duration.Round(time.Millisecond).String(),
		Status:      sum.Status(),
		Total:       sum.Total(),
		Succeeded:   sum.Succeeded(),
		Failed:      sum.Failed(),
		Jobs:        make([]jobReport, 0, len(sum.Outcomes)),
	}
	for _, o := range sum.Outcomes {
		j := jobReport{
			Source:   o.Job.Source,
			Output:   o.Job.Output,
			Status:   jobStatusOK,
			Duration: o.Duration.Round(time.Millisecond).String(),
		}
		if !o.OK() {
			j.Status = jobStatusFailed
			if o.Skipped {
				j.Status = jobStatusSkipped
			}
			j.Kind = html2png.ErrorKind(o.Err)
			j.Error = o.Err.Error()
		}
		r.Jobs = append(r.Jobs, j)
	}
	return r
}

// encodeReport picks JSON or YAML from the path's extension.
func encodeReport(path string, r *runReport) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yamlutil.Marshal(r)
}

// writeReport writes the report atomically so a reader never sees half of it.
func writeReport(path string, r *runReport) error {
	data, err := encodeReport(path, r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, reportFilePerm, reportDirPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	return nil
}
