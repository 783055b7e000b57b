package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"searchkit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeRun serializes a summary. Unset versions are stamped with the current
// ones.
func EncodeRun(summary model.RunSummary) ([]byte, error) {
	return json.Marshal(stampVersion(summary))
}

func DecodeRun(data []byte) (model.RunSummary, error) {
	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return summary, nil
}

func stampVersion(summary model.RunSummary) model.RunSummary {
	if summary.SchemaVersion == 0 {
		summary.SchemaVersion = CurrentSchemaVersion
	}
	if summary.CodecVersion == 0 {
		summary.CodecVersion = CurrentCodecVersion
	}
	return summary
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}

func validateRun(summary model.RunSummary) error {
	if summary.RunID == "" {
		return errors.New("run id is required")
	}
	return nil
}

func sortRunsNewestFirst(runs []model.RunSummary) {
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].CreatedAtUTC.Equal(runs[j].CreatedAtUTC) {
			return runs[i].CreatedAtUTC.After(runs[j].CreatedAtUTC)
		}
		return runs[i].RunID < runs[j].RunID
	})
}
