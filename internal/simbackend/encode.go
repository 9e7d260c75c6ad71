// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package simbackend

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/specialistvlad/deploygridgo/internal/backend"
)

// packConstructor converts args to the constructor's input types and
// ABI-encodes them.
func packConstructor(a *Artifact, args []any) ([]byte, error) {
	inputs := a.ABI.Constructor.Inputs
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("constructor of %s takes %d arguments, got %d", a.Name, len(inputs), len(args))
	}

	converted := make([]any, len(args))
	for i, arg := range args {
		v, err := convertArg(arg, inputs[i].Type)
		if err != nil {
			name := inputs[i].Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, inputs[i].Type.String(), err)
		}
		converted[i] = v
	}

	packed, err := a.ABI.Pack("", converted...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments of %s: %w", a.Name, err)
	}
	return packed, nil
}

// convertArg turns a plain value into the Go type go-ethereum expects for t.
func convertArg(v any, t abi.Type) (any, error) {
	if h, ok := v.(backend.Handle); ok {
		v = string(h)
	}

	switch t.T {
	case abi.IntTy, abi.UintTy:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		return fitInteger(n, t)
	case abi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("%q is not a hex address", a)
			}
			return common.HexToAddress(a), nil
		default:
			return nil, fmt.Errorf("expected address, got %T", v)
		}
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		elems, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected list, got %T", v)
		}
		var out reflect.Value
		if t.T == abi.ArrayTy {
			if len(elems) != t.Size {
				return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(elems))
			}
			out = reflect.New(t.GetType()).Elem()
		} else {
			out = reflect.MakeSlice(t.GetType(), len(elems), len(elems))
		}
		for i, e := range elems {
			c, err := convertArg(e, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(c))
		}
		return out.Interface(), nil
	default:
		return nil, fmt.Errorf("unsupported constructor argument type %s", t.String())
	}
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%v is not a whole number", n)
		}
		i, _ := big.NewFloat(n).Int(nil)
		return i, nil
	case *big.Int:
		return n, nil
	case string:
		i, ok := new(big.Int).SetString(n, 0)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", n)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}

var bigIntType = reflect.TypeOf(&big.Int{})

// fitInteger range-checks n and converts it to t's Go type: uint8, int64 and
// friends for the native sizes, *big.Int for everything else.
func fitInteger(n *big.Int, t abi.Type) (any, error) {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s does not fit in uint%d", n, t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		minVal := new(big.Int).Neg(limit)
		if n.Cmp(minVal) < 0 || n.Cmp(limit) >= 0 {
			return nil, fmt.Errorf("%s does not fit in int%d", n, t.Size)
		}
	}

	goType := t.GetType()
	if goType == bigIntType {
		return new(big.Int).Set(n), nil
	}
	out := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		out.SetUint(n.Uint64())
	} else {
		out.SetInt(n.Int64())
	}
	return out.Interface(), nil
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		out, err := hexutil.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("%q is not 0x-prefixed hex: %w", b, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected hex bytes, got %T", v)
	}
}
