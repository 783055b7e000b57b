package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SampleRecord is one observation emitted by a search engine. Index is
// assigned when the genome is generated, before it is scored.
type SampleRecord[G, S any] struct {
	Index  int
	Genome G
	Score  S
}

type RunMode string

const (
	RunModeRandom    RunMode = "random"
	RunModeHillClimb RunMode = "hillclimb"
)

// RecordSummary is the printable form of a SampleRecord kept after a run.
type RecordSummary struct {
	Index  int    `json:"index"`
	Genome string `json:"genome"`
	Score  string `json:"score"`
}

type TrajectoryPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

type RunSummary struct {
	VersionedRecord
	RunID        string            `json:"run_id"`
	Mode         RunMode           `json:"mode"`
	Problem      string            `json:"problem"`
	CreatedAtUTC time.Time         `json:"created_at_utc"`
	Seed         int64             `json:"seed"`
	NumToSearch  int               `json:"num_to_search"`
	Emitted      int               `json:"emitted"`
	Best         *RecordSummary    `json:"best,omitempty"`
	Min          *RecordSummary    `json:"min,omitempty"`
	Max          *RecordSummary    `json:"max,omitempty"`
	Trajectory   []TrajectoryPoint `json:"trajectory,omitempty"`
}
