package metadata

import (
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// MasterEditionAccountSize is the size allocated for a master edition
// account.
const MasterEditionAccountSize = 1 + 9 + 8 + 264

type MasterEditionAccount struct {
	Key       Key
	Supply    uint64
	MaxSupply *uint64
}

type masterEditionLayout struct {
	Key       uint8
	Supply    uint64
	MaxSupply *uint64
}

func (obj *MasterEditionAccount) Marshal() ([]byte, error) {
	serialized, err := borsh.Serialize(masterEditionLayout{
		Key:       uint8(obj.Key),
		Supply:    obj.Supply,
		MaxSupply: obj.MaxSupply,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize master edition account")
	}

	data := make([]byte, MasterEditionAccountSize)
	copy(data, serialized)
	return data, nil
}

func (obj *MasterEditionAccount) Unmarshal(data []byte) error {
	if len(data) == 0 || Key(data[0]) != KeyMasterEditionV2 {
		return errors.New("not a master edition account")
	}

	d := newBorshDecoder(data)
	layout := masterEditionLayout{
		Key:       d.uint8(),
		Supply:    d.uint64(),
		MaxSupply: d.optionalUint64(),
	}
	if d.err != nil {
		return errors.Wrap(d.err, "invalid master edition account data")
	}

	obj.Key = Key(layout.Key)
	obj.Supply = layout.Supply
	obj.MaxSupply = layout.MaxSupply

	return nil
}
