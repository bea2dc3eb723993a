//go:build 386 || arm || armbe || mips || mipsle || ppc || s390 || sparc || wasm

package types

import "go/types"

var (
	Long  = types.Typ[types.Int32]
	Ulong = types.Typ[types.Uint32]
)
