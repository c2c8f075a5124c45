package parser

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/posh-lang/posh/lexer"
)

// canonicalVersion tracks the canonical encoding layout. Bump on any
// field or semantics change so old hashes never collide with new ones.
const canonicalVersion = 1

// encMode is the deterministic CBOR encoder shared by all marshal
// operations.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("parser: failed to create canonical CBOR encoder: " + err.Error())
	}
}

// CanonicalNode is the wire form of a syntax tree node. Kinds encode as
// their names rather than enum ordinals so the encoding survives
// reordering of the NodeKind constants.
type CanonicalNode struct {
	Kind  string         `cbor:"1,keyasint"`
	Text  string         `cbor:"2,keyasint,omitempty"`
	Left  *CanonicalNode `cbor:"3,keyasint,omitempty"`
	Right *CanonicalNode `cbor:"4,keyasint,omitempty"`
}

// CanonicalTree is the versioned, deterministic wire form of a parsed
// tree. Two structurally identical parses always encode to identical
// bytes, so the hash can be used for caching and change detection.
type CanonicalTree struct {
	Version int            `cbor:"1,keyasint"`
	Root    *CanonicalNode `cbor:"2,keyasint,omitempty"`
}

// Canonicalize converts a parsed tree into its canonical wire form.
// The tree is read, not consumed.
func Canonicalize(t *Tree[lexer.Token]) *CanonicalTree {
	return &CanonicalTree{
		Version: canonicalVersion,
		Root:    canonicalNode(t.Head()),
	}
}

func canonicalNode(n *Node[lexer.Token]) *CanonicalNode {
	if n == nil {
		return nil
	}
	cn := &CanonicalNode{
		Kind:  n.Kind().String(),
		Left:  canonicalNode(n.Child(Left)),
		Right: canonicalNode(n.Child(Right)),
	}
	if tok, ok := n.Value(); ok {
		cn.Text = tok.Symbol()
	}
	return cn
}

// MarshalBinary encodes the tree as deterministic CBOR.
func (ct *CanonicalTree) MarshalBinary() ([]byte, error) {
	// Alias avoids MarshalBinary recursing into itself via the encoder.
	type canonicalTreeAlias CanonicalTree
	return encMode.Marshal((*canonicalTreeAlias)(ct))
}

// UnmarshalBinary decodes a tree from its CBOR form.
func (ct *CanonicalTree) UnmarshalBinary(data []byte) error {
	type canonicalTreeAlias CanonicalTree
	return cbor.Unmarshal(data, (*canonicalTreeAlias)(ct))
}

// Hash returns the hex SHA-256 of the canonical encoding.
func (ct *CanonicalTree) Hash() (string, error) {
	data, err := ct.MarshalBinary()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
