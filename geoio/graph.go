// Package geoio is the thin external collaborator that reads the graph
// input table into segment.Record values and writes the assembled result
// table back out as CSV. File I/O is explicitly out of scope for the
// decomposition/scheduling core; this package exists only so cmd/mc-router
// has something concrete to wire the core's input and output to.
package geoio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rivergraph/mc-router/assemble"
	"github.com/rivergraph/mc-router/mcerr"
	"github.com/rivergraph/mc-router/segment"
)

// header is the graph input format: a key SegmentID, a downstream SegmentID
// (sentinel for terminals), an optional waterbody identifier, then the fixed
// parameter columns in schema order.
var header = append([]string{"id", "downstream", "waterbody"}, segment.ParamColumns...)

// ReadGraph parses a CSV graph table from path into segment.Record values,
// ready for segment.NewStore.
func ReadGraph(path string) ([]segment.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoio: open %s: %w", path, err)
	}
	defer f.Close()
	return readGraph(f)
}

func readGraph(r io.Reader) ([]segment.Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("geoio: read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := indexColumns(rows[0])
	records := make([]segment.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func indexColumns(head []string) map[string]int {
	idx := make(map[string]int, len(head))
	for i, name := range head {
		idx[name] = i
	}
	return idx
}

func parseRow(row []string, cols map[string]int) (segment.Record, error) {
	id, err := field(row, cols, "id")
	if err != nil {
		return segment.Record{}, err
	}
	idVal, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return segment.Record{}, badDType("id", id, err)
	}

	down, err := field(row, cols, "downstream")
	if err != nil {
		return segment.Record{}, err
	}
	downVal, err := strconv.ParseInt(down, 10, 64)
	if err != nil {
		return segment.Record{}, badDType("downstream", down, err)
	}

	var waterbody *int64
	if i, ok := cols["waterbody"]; ok && i < len(row) && row[i] != "" {
		wb, err := strconv.ParseInt(row[i], 10, 64)
		if err != nil {
			return segment.Record{}, badDType("waterbody", row[i], err)
		}
		waterbody = &wb
	}

	var params segment.Params
	for i, name := range segment.ParamColumns {
		v, err := field(row, cols, name)
		if err != nil {
			return segment.Record{}, err
		}
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return segment.Record{}, badDType(name, v, err)
		}
		params[i] = float32(f)
	}

	return segment.Record{ID: idVal, Downstream: downVal, Waterbody: waterbody, Params: params}, nil
}

func field(row []string, cols map[string]int, name string) (string, error) {
	i, ok := cols[name]
	if !ok {
		return "", mcerr.Wrap(mcerr.StageConfig, fmt.Errorf("geoio: column %q: %w", name, mcerr.ErrMissingColumn))
	}
	if i >= len(row) {
		return "", mcerr.Wrap(mcerr.StageConfig, fmt.Errorf("geoio: row too short for column %q: %w", name, mcerr.ErrMissingColumn))
	}
	return row[i], nil
}

// badDType tags a numeric-parse failure as the spec's "wrong dtype"
// parameter-schema-mismatch class.
func badDType(column, value string, cause error) error {
	return mcerr.Wrap(mcerr.StageConfig, fmt.Errorf("geoio: column %q value %q: %w: %v", column, value, mcerr.ErrBadDType, cause))
}

// WriteTable writes table to path as CSV: one row per segment, columns
// segment_id then flow/velocity/depth triples per timestep.
func WriteTable(path string, table assemble.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("geoio: create %s: %w", path, err)
	}
	defer f.Close()
	return writeTable(f, table)
}

func writeTable(w io.Writer, table assemble.Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	nts := 0
	if len(table.FVD) > 0 {
		nts = len(table.FVD[0])
	}
	head := make([]string, 1, 1+nts*3)
	head[0] = "segment_id"
	for t := 0; t < nts; t++ {
		head = append(head, fmt.Sprintf("flow_%d", t), fmt.Sprintf("vel_%d", t), fmt.Sprintf("depth_%d", t))
	}
	if err := cw.Write(head); err != nil {
		return err
	}

	for i, id := range table.SegmentIDs {
		row := make([]string, 1, len(head))
		row[0] = strconv.FormatInt(id, 10)
		for _, cell := range table.FVD[i] {
			row = append(row,
				strconv.FormatFloat(float64(cell[0]), 'g', -1, 32),
				strconv.FormatFloat(float64(cell[1]), 'g', -1, 32),
				strconv.FormatFloat(float64(cell[2]), 'g', -1, 32),
			)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
