package session

import "testing"

// FuzzSessionDecode exercises the record decoder with arbitrary blobs.
// Goal: no panics; malformed input must be rejected with errors.
func FuzzSessionDecode(f *testing.F) {
	valid, err := Encode(&Record{Username: "u", Email: "u@test.com", RefreshToken: "t"})
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add([]byte{})
	f.Add([]byte("{"))
	f.Add([]byte(`{"username":1}`))
	if len(valid) > 4 {
		f.Add(valid[:len(valid)/2])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := Decode(data)
		if err != nil {
			return
		}
		if rec == nil {
			t.Fatal("Decode returned nil record without error")
		}
		if rec.RefreshToken == "" {
			t.Fatal("Decode accepted a record without a refresh token")
		}
	})
}
