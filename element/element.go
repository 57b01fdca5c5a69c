/*
Package element contains the relational records produced for each OSM node and
way, and the five output tables they are written to.
*/
package element

import (
	"strconv"
)

// Element kinds of the OSM XML vocabulary.
const (
	NodeKind     = "node"
	WayKind      = "way"
	RelationKind = "relation"
	TagKind      = "tag"
	NdKind       = "nd"
	MemberKind   = "member"
	BoundsKind   = "bounds"
)

// Node holds the attributes of one node element. All values are kept as
// they appear in the source document.
type Node struct {
	ID        string `json:"id"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
	User      string `json:"user"`
	UID       string `json:"uid"`
	Version   string `json:"version"`
	Changeset string `json:"changeset"`
	Timestamp string `json:"timestamp"`
}

func (n *Node) Row() []string {
	return []string{n.ID, n.Lat, n.Lon, n.User, n.UID, n.Version, n.Changeset, n.Timestamp}
}

// Way holds the attributes of one way element.
type Way struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	UID       string `json:"uid"`
	Version   string `json:"version"`
	Changeset string `json:"changeset"`
	Timestamp string `json:"timestamp"`
}

func (w *Way) Row() []string {
	return []string{w.ID, w.User, w.UID, w.Version, w.Changeset, w.Timestamp}
}

// Tag is a single key/value of a node or way. ID references the owning
// element. Type is either RegularTagType or the namespace prefix of the
// original key.
type Tag struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

const RegularTagType = "regular"

func (t *Tag) Row() []string {
	return []string{t.ID, t.Key, t.Value, t.Type}
}

// WayNode references a node of a way. Position is the zero based index of
// the nd element within the way.
type WayNode struct {
	ID       string `json:"id"`
	NodeID   string `json:"node_id"`
	Position int    `json:"position"`
}

func (wn *WayNode) Row() []string {
	return []string{wn.ID, wn.NodeID, strconv.Itoa(wn.Position)}
}

// Shaped is the record bundle of one element. Either Node or Way is set.
// Tags belong to the node_tags or way_tags table, depending on the kind.
type Shaped struct {
	Node     *Node
	Way      *Way
	WayNodes []WayNode
	Tags     []Tag
}

// Rows returns the rows of this bundle for each table it touches, in the
// order of Tables.
func (s *Shaped) Rows() []TableRows {
	if s.Way != nil {
		wayNodes := make([][]string, 0, len(s.WayNodes))
		for i := range s.WayNodes {
			wayNodes = append(wayNodes, s.WayNodes[i].Row())
		}
		return []TableRows{
			{WaysTable, [][]string{s.Way.Row()}},
			{WayNodesTable, wayNodes},
			{WayTagsTable, tagRows(s.Tags)},
		}
	}
	if s.Node != nil {
		return []TableRows{
			{NodesTable, [][]string{s.Node.Row()}},
			{NodeTagsTable, tagRows(s.Tags)},
		}
	}
	return nil
}

func tagRows(tags []Tag) [][]string {
	rows := make([][]string, 0, len(tags))
	for i := range tags {
		rows = append(rows, tags[i].Row())
	}
	return rows
}
