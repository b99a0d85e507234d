package store

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/mangle/ast"
)

var errUnsupportedConstant = errors.New("unsupported constant type")

// argValue is one atom argument in the args column. Statements only carry
// strings; integers and floats are accepted so that counters and measures can
// share the table.
type argValue struct {
	ast.Constant
}

// predicateJSON names the predicate of a dumped atom.
type predicateJSON struct {
	Symbol string `json:"symbol"`
	Arity  int    `json:"arity"`
}

// atomJSON is the dump form of an atom:
//
//	{"predicate":{"symbol":"triple","arity":3},"args":["s","p","o"]}
type atomJSON struct {
	Predicate predicateJSON `json:"predicate"`
	Args      []argValue    `json:"args"`
}

func newAtomJSON(a ast.Atom) (atomJSON, error) {
	args, err := argValues(a)
	if err != nil {
		return atomJSON{}, err
	}
	return atomJSON{
		Predicate: predicateJSON{Symbol: a.Predicate.Symbol, Arity: a.Predicate.Arity},
		Args:      args,
	}, nil
}

// argValues returns the arguments of a ground atom.
func argValues(a ast.Atom) ([]argValue, error) {
	args := make([]argValue, len(a.Args))
	for i, arg := range a.Args {
		c, ok := arg.(ast.Constant)
		if !ok {
			return nil, fmt.Errorf("argument %d is not a constant: %v %T", i, arg, arg)
		}
		switch c.Type {
		case ast.StringType, ast.NumberType, ast.Float64Type:
		default:
			return nil, fmt.Errorf("argument %d: %w: %d", i, errUnsupportedConstant, c.Type)
		}
		args[i] = argValue{c}
	}
	return args, nil
}

// MarshalJSONTo implements json.MarshalerTo.
func (v argValue) MarshalJSONTo(enc *jsontext.Encoder) error {
	switch v.Type {
	case ast.StringType:
		str, err := v.StringValue()
		if err != nil {
			return err
		}
		return enc.WriteToken(jsontext.String(str))
	case ast.NumberType:
		num, err := v.NumberValue()
		if err != nil {
			return err
		}
		return enc.WriteToken(jsontext.Int(num))
	case ast.Float64Type:
		flt, err := v.Float64Value()
		if err != nil {
			return err
		}
		return enc.WriteToken(jsontext.Float(flt))
	default:
		return fmt.Errorf("%w: %d", errUnsupportedConstant, v.Type)
	}
}

// UnmarshalJSONFrom implements json.UnmarshalerFrom.
func (v *argValue) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	switch tok.Kind() {
	case '"':
		v.Constant = ast.String(tok.String())
	case '0':
		if f := tok.Float(); f != float64(int64(f)) {
			v.Constant = ast.Float64(f)
		} else {
			v.Constant = ast.Number(tok.Int())
		}
	default:
		return fmt.Errorf("unexpected JSON token kind: %c", tok.Kind())
	}
	return nil
}

// unmarshalAtom rebuilds an atom from its predicate and the stored args JSON.
func unmarshalAtom(pred ast.PredicateSym, argsJSON string) (ast.Atom, error) {
	var args []argValue
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return ast.Atom{}, fmt.Errorf("failed to unmarshal args: %w", err)
	}
	// A fresh slice per atom: callbacks may keep the atom.
	terms := make([]ast.BaseTerm, len(args))
	for i, a := range args {
		terms[i] = a.Constant
	}
	return ast.Atom{Predicate: pred, Args: terms}, nil
}
