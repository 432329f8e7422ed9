package dump

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// The helpers below keep the two failure classes apart: a node of the
// wrong kind is a shape mismatch, a scalar that will not decode into
// the requested type is a coercion failure.

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

func unknownKey(entity, key string) error {
	return fmt.Errorf("%s: unknown key %q: %w", entity, key, ErrUnknownKey)
}

func wantMap(n *yaml.Node, entity string) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: expected mapping, got %s: %w", entity, kindName(n), ErrShapeMismatch)
	}
	return nil
}

func wantSequence(n *yaml.Node, entity, key string) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("%s: %s: expected sequence, got %s: %w", entity, key, kindName(n), ErrShapeMismatch)
	}
	return nil
}

func wantScalar(n *yaml.Node, entity, key string) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("%s: %s: expected scalar, got %s: %w", entity, key, kindName(n), ErrShapeMismatch)
	}
	return nil
}

func scalarString(n *yaml.Node, entity, key string) (string, error) {
	if err := wantScalar(n, entity, key); err != nil {
		return "", err
	}
	var v string
	if err := n.Decode(&v); err != nil {
		return "", coercionErr(entity, key, err)
	}
	return v, nil
}

func scalarUint32(n *yaml.Node, entity, key string) (uint32, error) {
	if err := wantScalar(n, entity, key); err != nil {
		return 0, err
	}
	var v uint32
	if err := n.Decode(&v); err != nil {
		return 0, coercionErr(entity, key, err)
	}
	return v, nil
}

func scalarUint64(n *yaml.Node, entity, key string) (uint64, error) {
	if err := wantScalar(n, entity, key); err != nil {
		return 0, err
	}
	var v uint64
	if err := n.Decode(&v); err != nil {
		return 0, coercionErr(entity, key, err)
	}
	return v, nil
}

func scalarBool(n *yaml.Node, entity, key string) (bool, error) {
	if err := wantScalar(n, entity, key); err != nil {
		return false, err
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return false, coercionErr(entity, key, err)
	}
	return v, nil
}

func coercionErr(entity, key string, err error) error {
	return fmt.Errorf("%s: %s: %v: %w", entity, key, err, ErrScalarCoercion)
}

func parseStringSeq(n *yaml.Node, entity, key string) ([]string, error) {
	if err := wantSequence(n, entity, key); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(n.Content))
	for _, elem := range n.Content {
		s, err := scalarString(elem, entity, key)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
