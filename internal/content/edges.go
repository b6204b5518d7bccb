package content

import "fmt"

// OutgoingEdges returns the edges leaving sourceID. Propagation is single-hop
// so this is the only traversal the engine needs.
func (s *Store) OutgoingEdges(sourceID int64) ([]Edge, error) {
	rows, err := s.conn.Query(`
		SELECT source_id, target_id, edge_type, dist_kind, dist_p1, dist_p2
		FROM edges WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing edges of node %d: %w", sourceID, err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.EdgeType, &e.Dist.Kind, &e.Dist.P1, &e.Dist.P2); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
