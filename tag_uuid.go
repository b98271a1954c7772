package cbor

import uuid "github.com/satori/go.uuid"

// decodeUUID handles tag 37: 16 raw bytes naming a UUID.
func decodeUUID(child interface{}) (interface{}, error) {
	raw, ok := child.([]byte)
	if !ok || len(raw) != 16 {
		return nil, ErrTagPayloadMismatch
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return nil, NewCborError(err, 0, "invalid tag-37 UUID payload")
	}
	return id, nil
}

// uuidBytes returns the 16-byte wire form of a UUID for tag 37 encoding.
func uuidBytes(id uuid.UUID) []byte {
	return id.Bytes()
}
