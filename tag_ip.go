package cbor

import (
	"net"
	"net/netip"
)

// DeprecatedIPNetwork is the decoded form of tag 261, the deprecated
// single-entry-map network representation {address-bytes: mask-bytes}
// (spec.md §4.4 "Deprecated IP/prefix representations").
type DeprecatedIPNetwork struct {
	Address net.IP
	Mask    net.IPMask
}

func addrFromBytes(raw []byte) (netip.Addr, error) {
	switch len(raw) {
	case 4:
		var b [4]byte
		copy(b[:], raw)
		return netip.AddrFrom4(b), nil
	case 16:
		var b [16]byte
		copy(b[:], raw)
		return netip.AddrFrom16(b), nil
	default:
		return netip.Addr{}, ErrTagPayloadMismatch
	}
}

// decodeIPAddress handles tag 52: a 4- or 16-byte string naming an address.
func decodeIPAddress(child interface{}) (interface{}, error) {
	raw, ok := child.([]byte)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	return addrFromBytes(raw)
}

// decodeIPNetwork handles tag 54: [address bytes, prefix length].
func decodeIPNetwork(child interface{}) (interface{}, error) {
	arr, ok := asArray(child)
	if !ok || len(arr) != 2 {
		return nil, ErrTagPayloadMismatch
	}
	raw, ok := arr[0].([]byte)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	bits, err := asInt64(arr[1])
	if err != nil {
		return nil, err
	}
	addr, err := addrFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return netip.PrefixFrom(addr, int(bits)), nil
}

// decodeDeprecatedIPAddress handles tag 260: the legacy plain-bytes address.
func decodeDeprecatedIPAddress(child interface{}) (interface{}, error) {
	raw, ok := child.([]byte)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	return net.IP(raw), nil
}

// decodeDeprecatedIPNetwork handles tag 261: a one-entry map of
// address-bytes to mask-bytes.
func decodeDeprecatedIPNetwork(child interface{}) (interface{}, error) {
	m, ok := child.(*Map)
	if !ok || m.Len() != 1 {
		return nil, ErrTagPayloadMismatch
	}
	entry := m.Entries()[0]
	addr, ok := entry.Key.([]byte)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	mask, ok := entry.Value.([]byte)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	return DeprecatedIPNetwork{Address: net.IP(addr), Mask: net.IPMask(mask)}, nil
}

// asArray normalizes []interface{}/Tuple into a plain slice for tag payload
// inspection.
func asArray(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case []interface{}:
		return a, true
	case Tuple:
		return []interface{}(a), true
	default:
		return nil, false
	}
}
