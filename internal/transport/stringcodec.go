package transport

import (
	"golang.org/x/text/encoding/traditionalchinese"
)

// EncodeBig5 converts a UTF-8 string to MS950 (Big5) bytes for textual wire
// fields (chat, board messages, GM broadcasts). The packet body format
// itself is opaque per spec.md §4.1; this codec only applies where a field
// is known to carry player-authored text, matching the teacher's
// packet.Writer.WriteS.
func EncodeBig5(s string) ([]byte, error) {
	return traditionalchinese.Big5.NewEncoder().Bytes([]byte(s))
}

// DecodeBig5 converts MS950 (Big5) bytes back to a UTF-8 string, matching
// the teacher's packet.Reader.ReadS.
func DecodeBig5(raw []byte) (string, error) {
	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
