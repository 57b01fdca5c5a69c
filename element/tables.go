package element

// Table describes one output table. The order of Fields is the column order
// of the table and of each row.
type Table struct {
	Name   string
	Fields []string
}

type TableRows struct {
	Table Table
	Rows  [][]string
}

var (
	NodesTable    = Table{"nodes", []string{"id", "lat", "lon", "user", "uid", "version", "changeset", "timestamp"}}
	NodeTagsTable = Table{"nodes_tags", []string{"id", "key", "value", "type"}}
	WaysTable     = Table{"ways", []string{"id", "user", "uid", "version", "changeset", "timestamp"}}
	WayNodesTable = Table{"ways_nodes", []string{"id", "node_id", "position"}}
	WayTagsTable  = Table{"ways_tags", []string{"id", "key", "value", "type"}}
)

// Tables lists all output tables.
var Tables = []Table{NodesTable, NodeTagsTable, WaysTable, WayNodesTable, WayTagsTable}
