package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over stripe indexes. Each stripe occupies
// replicas points on the ring.
type ring struct {
	points *treemap.Map

	// first is the stripe at the lowest point, which keys hashing past the
	// highest point wrap around to.
	first int
}

func newRing(stripes, replicas uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)

	point := make([]byte, 8)
	for stripe := uint(0); stripe < stripes; stripe++ {
		for replica := uint(0); replica < replicas; replica++ {
			binary.LittleEndian.PutUint32(point[0:4], uint32(stripe))
			binary.LittleEndian.PutUint32(point[4:8], uint32(replica))
			points.Put(hash(point), int(stripe))
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// shard returns the stripe owning key.
func (r *ring) shard(key []byte) int {
	_, stripe := r.points.Ceiling(hash(key))
	if stripe == nil {
		return r.first
	}
	return stripe.(int)
}

func hash(b []byte) int64 {
	h, _ := murmur3.Sum128(b)
	return int64(h)
}
