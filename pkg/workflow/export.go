package workflow

import (
	"context"

	"github.com/studygraph/backend/pkg/common"
)

// GraphStatistics summarizes a graph export: node and edge totals plus
// a per-type node count.
type GraphStatistics struct {
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
	NodeTypes map[string]int `json:"node_types"`
}

// GraphExport is the downloadable variant of a graph export, bundling
// the data with its statistics.
type GraphExport struct {
	UserID     string           `json:"user_id"`
	Statistics GraphStatistics  `json:"statistics"`
	Data       common.GraphData `json:"data"`
	Success    bool             `json:"success"`
}

// Export returns the user's full graph together with summary
// statistics, for download or external processing.
func (c *Controller) Export(ctx context.Context, userID string) (GraphExport, error) {
	data, err := c.store.ExportGraph(ctx, userID)
	if err != nil {
		return GraphExport{UserID: userID}, err
	}

	return GraphExport{
		UserID:     userID,
		Statistics: Statistics(data),
		Data:       data,
		Success:    true,
	}, nil
}

// Statistics computes export statistics from graph data.
func Statistics(data common.GraphData) GraphStatistics {
	nodeTypes := make(map[string]int, len(data.Nodes))
	for _, node := range data.Nodes {
		nodeTypes[node.Type]++
	}
	return GraphStatistics{
		Nodes:     len(data.Nodes),
		Edges:     len(data.Edges),
		NodeTypes: nodeTypes,
	}
}
