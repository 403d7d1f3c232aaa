package simulation

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Missing marks a column a row has no value for.
const Missing = "n/a"

// Field is one named cell of a results row.
type Field struct {
	Key   string
	Value string
}

// Fields returns the row of r: the run settings followed by the topology
// metrics in report order.
func (r *Result) Fields() []Field {
	fields := []Field{
		{"strategy", r.Strategy},
		{"set_num_nodes", strconv.Itoa(r.Config.Nodes)},
		{"set_min_peers", strconv.Itoa(r.Config.MinPeers)},
		{"set_max_peers", strconv.Itoa(r.Config.MaxPeers)},
		{"rounds", strconv.Itoa(r.Rounds)},
		{"connections", strconv.Itoa(r.Connections)},
	}
	if r.Report != nil {
		for _, m := range r.Report.Metrics() {
			fields = append(fields, Field{Key: m.Name, Value: m.String()})
		}
	}
	return fields
}

// WriteTable writes results as tab-separated values. The header is the
// union of all row keys in order of first appearance; absent cells print
// as Missing. Nil results are skipped.
func WriteTable(w io.Writer, results []*Result) error {
	var labels []string
	seen := make(map[string]bool)
	rows := make([]map[string]string, 0, len(results))

	for _, r := range results {
		if r == nil {
			continue
		}
		row := make(map[string]string)
		for _, f := range r.Fields() {
			row[f.Key] = f.Value
			if !seen[f.Key] {
				seen[f.Key] = true
				labels = append(labels, f.Key)
			}
		}
		rows = append(rows, row)
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if len(labels) > 0 {
		if err := cw.Write(labels); err != nil {
			return err
		}
	}
	for _, row := range rows {
		record := make([]string, len(labels))
		for i, label := range labels {
			v, ok := row[label]
			if !ok {
				v = Missing
			}
			record[i] = v
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
