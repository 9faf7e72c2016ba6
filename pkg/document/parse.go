package document

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// Parse decodes a JSON document into a Node tree, keeping object keys in
// source order.
func Parse(data []byte) (*Node, error) {
	// jsonparser is lenient about trailing garbage, so validate up front
	if !json.Valid(data) {
		return nil, ErrMalformed
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	node, err := decode(value, dataType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return node, nil
}

func decode(value []byte, dataType jsonparser.ValueType) (*Node, error) {
	switch dataType {
	case jsonparser.Object:
		return decodeObject(value)
	case jsonparser.Array:
		return decodeArray(value)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", value, err)
		}
		return Number(f), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, err
		}
		return Bool(b), nil
	case jsonparser.Null:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected value type %s", dataType)
	}
}

func decodeObject(value []byte) (*Node, error) {
	node := &Node{Kind: KindObject}
	err := jsonparser.ObjectEach(value, func(key []byte, raw []byte, dataType jsonparser.ValueType, _ int) error {
		// ObjectEach hands over keys already unescaped
		child, err := decode(raw, dataType)
		if err != nil {
			return err
		}
		node.set(string(key), child)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func decodeArray(value []byte) (*Node, error) {
	node := &Node{Kind: KindArray}
	var decodeErr error
	_, err := jsonparser.ArrayEach(value, func(raw []byte, dataType jsonparser.ValueType, _ int, err error) {
		if decodeErr != nil {
			return
		}
		if err != nil {
			decodeErr = err
			return
		}
		child, err := decode(raw, dataType)
		if err != nil {
			decodeErr = err
			return
		}
		node.Items = append(node.Items, child)
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return node, nil
}
