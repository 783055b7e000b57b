package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"searchkit/internal/model"
)

const (
	summaryFile    = "summary.json"
	trajectoryFile = "trajectory.csv"
	plotFile       = "trajectory.png"
)

// WriteRunArtifacts exports a finished run under baseDir/<run id>: the summary
// as JSON, the trajectory as CSV and, when there is one, a trajectory plot.
func WriteRunArtifacts(baseDir string, summary model.RunSummary) (string, error) {
	if summary.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	runDir := filepath.Join(baseDir, summary.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, summaryFile), summary); err != nil {
		return "", err
	}
	if err := WriteTrajectoryCSV(filepath.Join(runDir, trajectoryFile), summary.Trajectory); err != nil {
		return "", err
	}
	if len(summary.Trajectory) > 0 {
		title := fmt.Sprintf("%s %s", summary.Problem, summary.Mode)
		if err := WriteTrajectoryPlot(filepath.Join(runDir, plotFile), title, summary.Trajectory); err != nil {
			return "", err
		}
	}
	return runDir, nil
}

func WriteTrajectoryCSV(path string, points []model.TrajectoryPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"index", "best_score"}); err != nil {
		return err
	}
	for _, pt := range points {
		if err := writer.Write([]string{
			strconv.Itoa(pt.Index),
			strconv.FormatFloat(pt.Value, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadTrajectoryCSV(path string) ([]model.TrajectoryPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.TrajectoryPoint{}, nil
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("trajectory header must have at least 2 columns")
	}

	points := make([]model.TrajectoryPoint, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		index, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("trajectory index %q: %w", record[0], err)
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("trajectory value %q: %w", record[1], err)
		}
		points = append(points, model.TrajectoryPoint{Index: index, Value: value})
	}
	return points, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
