package cbor

import "regexp"

// decodeRegex handles tag 35: text naming a regular expression pattern.
func decodeRegex(child interface{}) (interface{}, error) {
	s, ok := child.(string)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, NewCborError(err, 0, "invalid tag-35 regular expression")
	}
	return re, nil
}
