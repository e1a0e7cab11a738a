package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pydup/pydup/internal/parser"
)

// hashLength is the truncated hex length of every fingerprint. Collisions
// at this length are acceptable: buckets stay small and fragment identity
// is always the full file/line span, never the hash alone.
const hashLength = 16

func hashDigest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// StructuralHasher fingerprints fragment trees. The structural hash keys
// Type-1 (exact) buckets; the normalized hash keys Type-2 (renamed) buckets.
type StructuralHasher struct{}

func NewStructuralHasher() *StructuralHasher {
	return &StructuralHasher{}
}

// HashStructural serializes the tree to a canonical nested-tuple string and
// digests it. Literal values contribute their type name only, so fragments
// differing just in literal content still match.
func (h *StructuralHasher) HashStructural(node *parser.Node) string {
	var sb strings.Builder
	writeCanonical(&sb, node)
	return hashDigest(sb.String())
}

// HashNormalized normalizes identifiers first, then hashes the result.
// Fragments that differ only by consistent renaming collide here.
func (h *StructuralHasher) HashNormalized(node *parser.Node) string {
	normalized := NewNormalizer().Normalize(node)
	var sb strings.Builder
	writeCanonical(&sb, normalized)
	return hashDigest(sb.String())
}

// Slot tags keep sibling lists from running together: without them,
// "if a: x; y" and "if a: x else: y" would serialize identically.
func writeCanonical(sb *strings.Builder, n *parser.Node) {
	if n == nil {
		sb.WriteString("()")
		return
	}

	sb.WriteByte('(')
	sb.WriteString(string(n.Type))

	switch n.Type {
	case parser.NodeConstant:
		// Type name only, never the literal value.
		sb.WriteByte(' ')
		sb.WriteString(n.LitType)
	default:
		if n.Name != "" {
			sb.WriteByte(' ')
			sb.WriteString(n.Name)
		}
	}

	if n.Op != "" {
		sb.WriteString(" op=")
		sb.WriteString(n.Op)
	}
	for _, name := range n.Names {
		sb.WriteString(" n=")
		sb.WriteString(name)
	}

	writeSingleSlot(sb, "f", n.Func)
	writeSingleSlot(sb, "l", n.Left)
	writeSingleSlot(sb, "t", n.Test)
	writeSingleSlot(sb, "i", n.Iter)
	writeSingleSlot(sb, "v", n.Value)
	writeSingleSlot(sb, "r", n.Right)

	writeListSlot(sb, "tg", n.Targets)
	writeListSlot(sb, "a", n.Args)
	writeListSlot(sb, "kw", n.Keywords)
	writeListSlot(sb, "bs", n.Bases)
	writeListSlot(sb, "c", n.Children)
	writeListSlot(sb, "b", n.Body)
	writeListSlot(sb, "h", n.Handlers)
	writeListSlot(sb, "o", n.Orelse)
	writeListSlot(sb, "fb", n.Finalbody)
	writeListSlot(sb, "d", n.Decorators)

	sb.WriteByte(')')
}

func writeSingleSlot(sb *strings.Builder, tag string, n *parser.Node) {
	if n == nil {
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(tag)
	sb.WriteByte(':')
	writeCanonical(sb, n)
}

func writeListSlot(sb *strings.Builder, tag string, nodes []*parser.Node) {
	if len(nodes) == 0 {
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(tag)
	sb.WriteString(":[")
	for _, n := range nodes {
		writeCanonical(sb, n)
	}
	sb.WriteByte(']')
}
