package geo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
)

// HostMargin is how far a sampled host stays from the edges of its block.
// Offsets fall in [HostMargin, size-HostMargin], which excludes the first
// HostMargin addresses and the last HostMargin-1.
const HostMargin = 10

const minBlockSize = 2*HostMargin + 1

// ErrPrefixTooSmall is returned for ranges without room for the margin.
var ErrPrefixTooSmall = errors.New("address range too small for host margin")

// HostCount returns the number of addresses in an IPv4 prefix.
func HostCount(p netip.Prefix) uint64 {
	return uint64(1) << (32 - p.Bits())
}

// RandomHost draws one address strictly inside p.
func RandomHost(p netip.Prefix, src *random.Source) (netip.Addr, error) {
	if !p.Addr().Is4() {
		return netip.Addr{}, fmt.Errorf("unsupported prefix %s: only IPv4 is sampled", p)
	}
	size := HostCount(p)
	if size < minBlockSize {
		return netip.Addr{}, fmt.Errorf("%w: %s", ErrPrefixTooSmall, p)
	}

	span := int(size - 2*HostMargin)
	offset := uint32(HostMargin + src.IntRange(0, span))

	base := p.Masked().Addr().As4()
	host := binary.BigEndian.Uint32(base[:]) + offset

	var out [4]byte
	binary.BigEndian.PutUint32(out[:], host)
	return netip.AddrFrom4(out), nil
}

// RandomLocationHost picks one of the location's ranges and draws a host in it.
func RandomLocationHost(l *Location, src *random.Source) (netip.Addr, error) {
	if len(l.CIDRs) == 0 {
		return netip.Addr{}, fmt.Errorf("location %s has no address ranges", l.Name)
	}
	p := l.CIDRs[src.Pick(len(l.CIDRs))]
	addr, err := RandomHost(p, src)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("location %s: %w", l.Name, err)
	}
	return addr, nil
}
