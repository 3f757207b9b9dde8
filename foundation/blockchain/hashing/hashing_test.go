package hashing_test

import (
	"math"
	"testing"

	"github.com/meshledger/meshledger/foundation/blockchain/hashing"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type record struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash values canonically.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling the same record twice.", testID)
		{
			h1 := mustHash(t, record{Name: "n1", Value: 1000})
			h2 := mustHash(t, record{Value: 1000, Name: "n1"})
			if h1 != h2 {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, h2)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, h1)
				t.Fatalf("\t%s\tTest %d:\tShould get the same hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same hash.", success, testID)

			if len(h1) != 66 {
				t.Fatalf("\t%s\tTest %d:\tShould get a 0x prefixed 256 bit hash: %d", failed, testID, len(h1))
			}
			t.Logf("\t%s\tTest %d:\tShould get a 0x prefixed 256 bit hash.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen handling different records.", testID)
		{
			h1 := mustHash(t, record{Name: "n1", Value: 1000})
			h2 := mustHash(t, record{Name: "n1", Value: 1000.5})
			if h1 == h2 {
				t.Fatalf("\t%s\tTest %d:\tShould get a different hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get a different hash.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen handling records that can't be encoded.", testID)
		{
			values := []float64{math.NaN(), math.Inf(1), math.Inf(-1)}
			for _, value := range values {
				h, err := hashing.Hash(record{Name: "n1", Value: value})
				if err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould get an error for %v, got hash %s.", failed, testID, value, h)
				}
				if h != "" {
					t.Fatalf("\t%s\tTest %d:\tShould not get a hash for %v: %s", failed, testID, value, h)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould get an error for non-finite values.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen taking a prefix of a hash.", testID)
		{
			if p := hashing.Prefix("0x0000abcd", 4); p != "0000" {
				t.Fatalf("\t%s\tTest %d:\tShould skip the 0x prefix: %s", failed, testID, p)
			}
			t.Logf("\t%s\tTest %d:\tShould skip the 0x prefix.", success, testID)

			if p := hashing.Prefix("0x12", 4); p != "" {
				t.Fatalf("\t%s\tTest %d:\tShould reject a short hash: %s", failed, testID, p)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a short hash.", success, testID)
		}
	}
}

// mustHash hashes the value and fails the test on error.
func mustHash(t *testing.T, value any) string {
	t.Helper()

	h, err := hashing.Hash(value)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to hash the value: %v", failed, err)
	}

	return h
}
