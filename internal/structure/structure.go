// Package structure folds an ordered page stream into a
// chapter → section → content-block tree.
package structure

// NodeKind discriminates tree nodes.
type NodeKind string

const (
	KindChapter      NodeKind = "chapter"
	KindSection      NodeKind = "section"
	KindUnclassified NodeKind = "unclassified"
)

// BlockType is the pedagogical type of a content block.
type BlockType string

const (
	TypeTeoria       BlockType = "teoria"
	TypeExemplo      BlockType = "exemplo"
	TypeExercicio    BlockType = "exercicio"
	TypeQuestao      BlockType = "questao"
	TypeGabarito     BlockType = "gabarito"
	TypeUnclassified BlockType = "texto_nao_classificado"
)

// ContentNode is a node in the document tree. Chapters own sections and
// blocks; sections own blocks. The tree is immutable once built.
type ContentNode struct {
	Kind      NodeKind
	Title     string
	FirstPage int
	LastPage  int
	Children  []*ContentNode
	Blocks    []*ContentBlock
}

// ContentBlock is a leaf of page text. Its parent is fixed at creation by
// the builder's current context and never changes.
type ContentBlock struct {
	Type BlockType
	Text string
	Page int
}

// Walk visits every block in the node and its children, depth first.
func (n *ContentNode) Walk(fn func(node *ContentNode, block *ContentBlock)) {
	for _, b := range n.Blocks {
		fn(n, b)
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
