package storage

import "testing"

// FuzzDecodeEntry feeds arbitrary bytes to the envelope decoder.
func FuzzDecodeEntry(f *testing.F) {
	encoded, err := encodeEntry(entry{Value: "header.payload.sig", ExpiresAt: 1700000000000})
	if err == nil {
		f.Add(encoded)
		f.Add(encoded[:5])
		f.Add(append(encoded, 0))
	}
	f.Add([]byte{})
	f.Add([]byte{1})
	f.Add([]byte{2, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		e, err := decodeEntry(data)
		if err != nil {
			return
		}
		again, err := encodeEntry(e)
		if err != nil {
			t.Fatalf("re-encode decoded entry: %v", err)
		}
		if string(again) != string(data) {
			t.Fatalf("round trip mismatch")
		}
	})
}
