//go:build amd64 || amd64p32 || arm64 || arm64be || ppc64 || ppc64le || mips64 || mips64le || mips64p32 || mips64p32le || s390x || sparc64 || riscv64 || loong64

package types

import "go/types"

var (
	Long  = types.Typ[types.Int64]
	Ulong = types.Typ[types.Uint64]
)
