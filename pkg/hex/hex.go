// Package hex is a []byte that round trips as a hex string in json, yaml
// and toml, with or without a 0x prefix. Call payloads and signatures use
// it so request fixtures stay readable.
package hex

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

type Hex []byte

func (h Hex) String() string {
	return "0x" + hex.EncodeToString(h)
}

func (h Hex) Bytes() []byte {
	return []byte(h)
}

func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func decodeHex(bz []byte) (Hex, error) {
	var s string
	s = strings.Trim(string(bz), "\"")
	s = strings.Trim(s, "'")
	s = strings.TrimPrefix(s, "0x")
	bz, err := hex.DecodeString(s)
	if err != nil {
		return bz, err
	}
	return bz, nil
}

func (h *Hex) UnmarshalJSON(data []byte) error {
	bz, err := decodeHex(data)
	if err != nil {
		return err
	}
	*h = bz
	return nil
}

func (h *Hex) UnmarshalText(data []byte) error {
	bz, err := decodeHex(data)
	if err != nil {
		return err
	}
	*h = bz
	return nil
}

func (h Hex) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h Hex) MarshalYAML() (interface{}, error) {
	return h.String(), nil
}

func (h *Hex) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	bz, err := decodeHex([]byte(s))
	if err != nil {
		return err
	}
	*h = bz
	return nil
}
