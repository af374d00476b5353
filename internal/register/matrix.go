// Package register aggregates lifecycle risk entries into the fixed
// phase x vector matrix consumed by reports and the CLI.
package register

import "aigov/internal/model"

// Cell holds the aggregate for one (phase, vector) combination.
type Cell struct {
	Count       int `json:"count"`
	MaxSeverity int `json:"max_severity"`
}

// Matrix is the complete 7x8 grid. Every combination of lifecycle phase and
// risk vector is present, including all-zero cells, so consumers can rely on
// a full grid regardless of the data.
type Matrix struct {
	cells map[model.LifecyclePhase]map[model.RiskVector]Cell
}

// BuildMatrix cross-tabulates the given risks into the fixed grid. Entries
// are typically pre-filtered to a single system, but the aggregation itself
// does not care.
func BuildMatrix(risks []model.LifecycleRiskEntry) Matrix {
	cells := make(map[model.LifecyclePhase]map[model.RiskVector]Cell, len(model.AllLifecyclePhases))
	for _, phase := range model.AllLifecyclePhases {
		row := make(map[model.RiskVector]Cell, len(model.AllRiskVectors))
		for _, vector := range model.AllRiskVectors {
			row[vector] = Cell{}
		}
		cells[phase] = row
	}

	for _, r := range risks {
		row, ok := cells[r.LifecyclePhase]
		if !ok {
			continue // out-of-domain entry, constructor validation prevents this
		}
		cell := row[r.RiskVector]
		cell.Count++
		if r.Severity > cell.MaxSeverity {
			cell.MaxSeverity = r.Severity
		}
		row[r.RiskVector] = cell
	}

	return Matrix{cells: cells}
}

// Cell returns the aggregate for one (phase, vector) combination. Unknown
// combinations return a zero cell.
func (m Matrix) Cell(phase model.LifecyclePhase, vector model.RiskVector) Cell {
	if row, ok := m.cells[phase]; ok {
		return row[vector]
	}
	return Cell{}
}

// Size returns the total number of cells in the grid.
func (m Matrix) Size() int {
	n := 0
	for _, row := range m.cells {
		n += len(row)
	}
	return n
}

// Rows renders the grid in canonical phase/vector order: one slice of cells
// per lifecycle phase, vectors in canonical order within each row.
func (m Matrix) Rows() [][]Cell {
	rows := make([][]Cell, 0, len(model.AllLifecyclePhases))
	for _, phase := range model.AllLifecyclePhases {
		row := make([]Cell, 0, len(model.AllRiskVectors))
		for _, vector := range model.AllRiskVectors {
			row = append(row, m.Cell(phase, vector))
		}
		rows = append(rows, row)
	}
	return rows
}
