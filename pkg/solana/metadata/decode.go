package metadata

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// borshDecoder reads borsh encoded values from the start of data, advancing
// offset by each value's size. The first error sticks and every later read
// returns a zero value.
//
// borsh.Deserialize reads an Option tag of 0 as a pointer to a zero value,
// so anything carrying an Option is decoded here instead.
type borshDecoder struct {
	data   []byte
	offset int
	err    error
}

func newBorshDecoder(data []byte) *borshDecoder {
	return &borshDecoder{data: data}
}

func (d *borshDecoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.data)-d.offset < n {
		d.err = errors.Errorf("unexpected end of data at offset %d", d.offset)
		return nil
	}

	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b
}

func (d *borshDecoder) uint8() uint8 {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *borshDecoder) bool() bool {
	offset := d.offset
	v := d.uint8()
	if v > 1 && d.err == nil {
		d.err = errors.Errorf("invalid bool %d at offset %d", v, offset)
	}
	return v == 1
}

func (d *borshDecoder) uint16() uint16 {
	b := d.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *borshDecoder) uint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *borshDecoder) uint64() uint64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *borshDecoder) key32() (k [32]byte) {
	copy(k[:], d.next(32))
	return k
}

func (d *borshDecoder) string() string {
	l := d.uint32()
	return string(d.next(int(l)))
}

// option reads an Option tag and reports whether a value follows.
func (d *borshDecoder) option() bool {
	offset := d.offset
	v := d.uint8()
	if v > 1 && d.err == nil {
		d.err = errors.Errorf("invalid option tag %d at offset %d", v, offset)
	}
	return v == 1
}

// enum reads a single variant enum tag.
func (d *borshDecoder) enum(name string) {
	offset := d.offset
	if v := d.uint8(); v != 0 && d.err == nil {
		d.err = errors.Errorf("unsupported %s variant %d at offset %d", name, v, offset)
	}
}

// finish fails if any bytes were left unread.
func (d *borshDecoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.offset != len(d.data) {
		return errors.Errorf("%d trailing bytes", len(d.data)-d.offset)
	}
	return nil
}

func (d *borshDecoder) optionalUint8() *uint8 {
	if !d.option() {
		return nil
	}
	v := d.uint8()
	return &v
}

func (d *borshDecoder) optionalUint64() *uint64 {
	if !d.option() {
		return nil
	}
	v := d.uint64()
	return &v
}

func (d *borshDecoder) optionalCreators() *[]Creator {
	if !d.option() {
		return nil
	}

	l := d.uint32()
	if d.err == nil && l > maxCreatorLimit {
		d.err = errors.Errorf("creator count %d exceeds %d", l, maxCreatorLimit)
		return nil
	}

	creators := make([]Creator, 0, l)
	for i := uint32(0); i < l && d.err == nil; i++ {
		creators = append(creators, Creator{
			Address:  d.key32(),
			Verified: d.bool(),
			Share:    d.uint8(),
		})
	}
	return &creators
}

func (d *borshDecoder) optionalCollection() *Collection {
	if !d.option() {
		return nil
	}
	return &Collection{
		Verified: d.bool(),
		Key:      d.key32(),
	}
}

func (d *borshDecoder) optionalUses() *Uses {
	if !d.option() {
		return nil
	}
	return &Uses{
		UseMethod: d.uint8(),
		Remaining: d.uint64(),
		Total:     d.uint64(),
	}
}

func (d *borshDecoder) optionalCollectionDetails() *CollectionDetails {
	if !d.option() {
		return nil
	}
	d.enum("collection details")
	return &CollectionDetails{
		V1: CollectionDetailsV1{Size: d.uint64()},
	}
}

func (d *borshDecoder) optionalProgrammableConfig() *ProgrammableConfig {
	if !d.option() {
		return nil
	}
	d.enum("programmable config")

	var ruleSet *[32]byte
	if d.option() {
		k := d.key32()
		ruleSet = &k
	}
	return &ProgrammableConfig{
		V1: ProgrammableConfigV1{RuleSet: ruleSet},
	}
}

func (d *borshDecoder) dataV2() DataV2 {
	return DataV2{
		Name:                 d.string(),
		Symbol:               d.string(),
		Uri:                  d.string(),
		SellerFeeBasisPoints: d.uint16(),
		Creators:             d.optionalCreators(),
		Collection:           d.optionalCollection(),
		Uses:                 d.optionalUses(),
	}
}

func (d *borshDecoder) accountData() Data {
	return Data{
		Name:                 d.string(),
		Symbol:               d.string(),
		Uri:                  d.string(),
		SellerFeeBasisPoints: d.uint16(),
		Creators:             d.optionalCreators(),
	}
}
