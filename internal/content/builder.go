package content

import (
	"database/sql"
	"fmt"

	"hifz/engine/internal/errs"
)

// Builder-side writes. These serve the content-producer boundary (and test
// fixtures); the engine itself never mutates a content version in place.

// AddNode inserts a node and returns its internal id.
func (s *Store) AddNode(n Node) (int64, error) {
	var axis any
	if n.Axis != "" {
		axis = n.Axis
	}
	res, err := s.conn.Exec(`
		INSERT INTO nodes (ukey, node_type, base_node_id, axis, importance, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.Ukey, n.NodeType, n.BaseNodeID, axis, n.Importance, n.Seq)
	if err != nil {
		return 0, fmt.Errorf("inserting node %q: %w", n.Ukey, err)
	}
	return res.LastInsertId()
}

// AddEdge inserts an edge after verifying both endpoints exist in this
// version. A dangling endpoint is an integrity violation, not a silent skip.
func (s *Store) AddEdge(e Edge) error {
	for _, id := range []int64{e.SourceID, e.TargetID} {
		var one int
		err := s.conn.QueryRow(`SELECT 1 FROM nodes WHERE id = ?`, id).Scan(&one)
		if err == sql.ErrNoRows {
			return fmt.Errorf("edge %d→%d references missing node %d: %w",
				e.SourceID, e.TargetID, id, errs.ErrIntegrity)
		}
		if err != nil {
			return fmt.Errorf("checking edge endpoint %d: %w", id, err)
		}
	}
	_, err := s.conn.Exec(`
		INSERT INTO edges (source_id, target_id, edge_type, dist_kind, dist_p1, dist_p2)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.SourceID, e.TargetID, e.EdgeType, e.Dist.Kind, e.Dist.P1, e.Dist.P2)
	if err != nil {
		return fmt.Errorf("inserting edge %d→%d: %w", e.SourceID, e.TargetID, err)
	}
	return nil
}

// AddGoal registers a goal under a bandit goal group.
func (s *Store) AddGoal(goalID, goalGroup string) error {
	_, err := s.conn.Exec(`INSERT INTO goals (goal_id, goal_group) VALUES (?, ?)`, goalID, goalGroup)
	if err != nil {
		return fmt.Errorf("inserting goal %q: %w", goalID, err)
	}
	return nil
}

// BindGoalNode binds a node into a goal's scope.
func (s *Store) BindGoalNode(goalID string, nodeID int64, priority float64) error {
	_, err := s.conn.Exec(`
		INSERT INTO goal_nodes (goal_id, node_id, priority) VALUES (?, ?, ?)
	`, goalID, nodeID, priority)
	if err != nil {
		return fmt.Errorf("binding node %d to goal %q: %w", nodeID, goalID, err)
	}
	return nil
}
