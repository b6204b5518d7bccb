package content

import (
	"database/sql"
	"fmt"

	"hifz/engine/internal/errs"
)

// scanNode scans a row into a Node. The row must have all 7 columns in
// standard order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var n Node
	var axis sql.NullString
	err := scanner.Scan(&n.ID, &n.Ukey, &n.NodeType, &n.BaseNodeID, &axis, &n.Importance, &n.Seq)
	if axis.Valid {
		n.Axis = axis.String
	}
	return n, err
}

const nodeColumns = `id, ukey, node_type, base_node_id, axis, importance, seq`

// GetNode returns a node by internal id.
func (s *Store) GetNode(id int64) (Node, error) {
	row := s.conn.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return Node{}, fmt.Errorf("node id %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return Node{}, fmt.Errorf("loading node %d: %w", id, err)
	}
	return n, nil
}

// GetNodeByUkey returns a node by its stable string identity.
func (s *Store) GetNodeByUkey(ukey string) (Node, error) {
	row := s.conn.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE ukey = ?`, ukey)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return Node{}, fmt.Errorf("node %q: %w", ukey, errs.ErrNotFound)
	}
	if err != nil {
		return Node{}, fmt.Errorf("loading node %q: %w", ukey, err)
	}
	return n, nil
}

// AllIdentities returns every (id, ukey) pair in the current version, used to
// build the registry cache wholesale.
func (s *Store) AllIdentities() (map[string]int64, error) {
	rows, err := s.conn.Query(`SELECT id, ukey FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("listing node identities: %w", err)
	}
	defer rows.Close()

	idents := make(map[string]int64)
	for rows.Next() {
		var id int64
		var ukey string
		if err := rows.Scan(&id, &ukey); err != nil {
			return nil, err
		}
		idents[ukey] = id
	}
	return idents, rows.Err()
}

// NodesForGoal returns the nodes bound to a goal, highest priority first.
// An unknown goal is ErrNotFound; a known goal with no bindings is empty.
func (s *Store) NodesForGoal(goalID string) ([]Node, error) {
	var exists int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM goals WHERE goal_id = ?`, goalID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking goal %q: %w", goalID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("goal %q: %w", goalID, errs.ErrNotFound)
	}

	rows, err := s.conn.Query(`
		SELECT n.id, n.ukey, n.node_type, n.base_node_id, n.axis, n.importance, n.seq
		FROM goal_nodes g JOIN nodes n ON n.id = g.node_id
		WHERE g.goal_id = ?
		ORDER BY g.priority DESC, n.seq ASC
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("listing goal %q nodes: %w", goalID, err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// GoalGroup returns the bandit goal group a goal belongs to.
func (s *Store) GoalGroup(goalID string) (string, error) {
	var group string
	err := s.conn.QueryRow(`SELECT goal_group FROM goals WHERE goal_id = ?`, goalID).Scan(&group)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("goal %q: %w", goalID, errs.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loading goal group for %q: %w", goalID, err)
	}
	return group, nil
}
