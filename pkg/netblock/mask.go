package netblock

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// MaxMaskLength is the longest IPv4 prefix, a single host.
const MaxMaskLength = 32

// prefixMasks holds the 33 IPv4 prefix masks, index 0 is the empty mask and
// index 32 keeps every bit. Each entry sets one more bit from the most
// significant end.
var prefixMasks = [MaxMaskLength + 1]uint32{
	0x00000000,
	0x80000000, 0xc0000000, 0xe0000000, 0xf0000000,
	0xf8000000, 0xfc000000, 0xfe000000, 0xff000000,
	0xff800000, 0xffc00000, 0xffe00000, 0xfff00000,
	0xfff80000, 0xfffc0000, 0xfffe0000, 0xffff0000,
	0xffff8000, 0xffffc000, 0xffffe000, 0xfffff000,
	0xfffff800, 0xfffffc00, 0xfffffe00, 0xffffff00,
	0xffffff80, 0xffffffc0, 0xffffffe0, 0xfffffff0,
	0xfffffff8, 0xfffffffc, 0xfffffffe, 0xffffffff,
}

// ValidMaskLength reports whether length is a usable IPv4 prefix length.
func ValidMaskLength(length int) bool {
	return length >= 0 && length <= MaxMaskLength
}

// MaskBits returns the prefix mask keeping the `length` most significant bits.
//
// Returns:
//   - the mask, e.g. 0xffffff00 for 24
//   - ErrInvalidMaskLength if length is outside [0,32]
func MaskBits(length int) (uint32, error) {
	if !ValidMaskLength(length) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMaskLength, length)
	}
	return prefixMasks[length], nil
}

// ApplyMask zeroes every bit of addr outside the prefix of the given length.
// The caller must have validated length.
func ApplyMask(addr uint32, length int) uint32 {
	if !ValidMaskLength(length) {
		panic(fmt.Sprintf("[BUG] ApplyMask: mask length %d must be validated before use", length))
	}
	return addr & prefixMasks[length]
}

// ParseAddr converts dotted-decimal IPv4 text into its 32 bit big-endian
// integer form, so 10.1.2.0 becomes 0x0a010200.
//
// IPv6 text, IPv4-mapped IPv6 and CIDR suffixes are rejected with
// ErrMalformedAddress.
func ParseAddr(text string) (uint32, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil || !addr.Is4() {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAddress, text)
	}
	ip4 := addr.As4()
	return binary.BigEndian.Uint32(ip4[:]), nil
}

// FormatAddr is the inverse of ParseAddr.
func FormatAddr(addr uint32) string {
	var ip4 [4]byte
	binary.BigEndian.PutUint32(ip4[:], addr)
	return netip.AddrFrom4(ip4).String()
}

// Label renders the canonical "base/mask" identifier of a masked base address.
func Label(masked uint32, length int) string {
	return fmt.Sprintf("%s/%d", FormatAddr(masked), length)
}
