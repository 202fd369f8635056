package metadata

import (
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

type Key uint8

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/v1.13.2/programs/token-metadata/program/src/state/mod.rs
const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
)

const (
	maxCreatorLimit = 5
	maxCreatorLen   = 32 + 1 + 1
	maxDataSize     = 4 + MaxNameLength + 4 + MaxSymbolLength + 4 + MaxURILength + 2 + 1 + 4 + maxCreatorLimit*maxCreatorLen

	// MetadataAccountSize is the size allocated for a metadata account.
	MetadataAccountSize = 1 + 32 + 32 + maxDataSize + 1 + 1 + 9 + 172
)

// TokenStandard values stored in a metadata account.
const (
	TokenStandardNonFungible uint8 = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type MetadataAccount struct {
	Key                  Key
	UpdateAuthority      ed25519.PublicKey
	Mint                 ed25519.PublicKey
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *uint8
	Collection           *Collection
	Uses                 *Uses
}

type metadataLayout struct {
	Key                 uint8
	UpdateAuthority     [32]byte
	Mint                [32]byte
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *uint8
	Collection          *Collection
	Uses                *Uses
	CollectionDetails   *CollectionDetails
	ProgrammableConfig  *ProgrammableConfig
}

// Marshal encodes the account into MetadataAccountSize bytes. The strings are
// stored padded to their maximum lengths.
func (obj *MetadataAccount) Marshal() ([]byte, error) {
	layout := metadataLayout{
		Key:             uint8(obj.Key),
		UpdateAuthority: toKey32(obj.UpdateAuthority),
		Mint:            toKey32(obj.Mint),
		Data: Data{
			Name:                 toFixedString(obj.Name, MaxNameLength),
			Symbol:               toFixedString(obj.Symbol, MaxSymbolLength),
			Uri:                  toFixedString(obj.Uri, MaxURILength),
			SellerFeeBasisPoints: obj.SellerFeeBasisPoints,
		},
		PrimarySaleHappened: obj.PrimarySaleHappened,
		IsMutable:           obj.IsMutable,
		EditionNonce:        obj.EditionNonce,
		TokenStandard:       obj.TokenStandard,
		Collection:          obj.Collection,
		Uses:                obj.Uses,
	}
	if len(obj.Creators) > 0 {
		creators := obj.Creators
		layout.Data.Creators = &creators
	}

	serialized, err := borsh.Serialize(layout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize metadata account")
	}
	if len(serialized) > MetadataAccountSize {
		return nil, errors.Errorf("metadata account exceeds %d bytes", MetadataAccountSize)
	}

	data := make([]byte, MetadataAccountSize)
	copy(data, serialized)
	return data, nil
}

func (obj *MetadataAccount) Unmarshal(data []byte) error {
	if len(data) == 0 || Key(data[0]) != KeyMetadataV1 {
		return errors.New("not a metadata account")
	}

	d := newBorshDecoder(data)
	layout := metadataLayout{
		Key:                 d.uint8(),
		UpdateAuthority:     d.key32(),
		Mint:                d.key32(),
		Data:                d.accountData(),
		PrimarySaleHappened: d.bool(),
		IsMutable:           d.bool(),
		EditionNonce:        d.optionalUint8(),
		TokenStandard:       d.optionalUint8(),
		Collection:          d.optionalCollection(),
		Uses:                d.optionalUses(),
		CollectionDetails:   d.optionalCollectionDetails(),
		ProgrammableConfig:  d.optionalProgrammableConfig(),
	}
	if d.err != nil {
		return errors.Wrap(d.err, "invalid metadata account data")
	}

	obj.Key = Key(layout.Key)
	obj.UpdateAuthority = fromKey32(layout.UpdateAuthority)
	obj.Mint = fromKey32(layout.Mint)
	obj.Name = removeFixedStringPadding(layout.Data.Name)
	obj.Symbol = removeFixedStringPadding(layout.Data.Symbol)
	obj.Uri = removeFixedStringPadding(layout.Data.Uri)
	obj.SellerFeeBasisPoints = layout.Data.SellerFeeBasisPoints
	obj.Creators = nil
	if layout.Data.Creators != nil {
		obj.Creators = *layout.Data.Creators
	}
	obj.PrimarySaleHappened = layout.PrimarySaleHappened
	obj.IsMutable = layout.IsMutable
	obj.EditionNonce = layout.EditionNonce
	obj.TokenStandard = layout.TokenStandard
	obj.Collection = layout.Collection
	obj.Uses = layout.Uses

	return nil
}
