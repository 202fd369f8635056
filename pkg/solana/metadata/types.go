package metadata

import (
	"github.com/near/borsh-go"
)

// Borsh schemas shared by instruction arguments and account layouts. Keys
// are fixed size arrays so they encode without a length prefix.

type Creator struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type Collection struct {
	Verified bool
	Key      [32]byte
}

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type CollectionDetails struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   CollectionDetailsV1
}

type CollectionDetailsV1 struct {
	Size uint64
}

type ProgrammableConfig struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   ProgrammableConfigV1
}

type ProgrammableConfigV1 struct {
	RuleSet *[32]byte
}

// DataV2 is the user supplied portion of a metadata account.
type DataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
	Collection           *Collection
	Uses                 *Uses
}

// Data is the user supplied portion of a metadata account as it is stored.
// Collection and uses live at the top level of the account.
type Data struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
}
