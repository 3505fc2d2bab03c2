package entropy

import "testing"

func TestNewRand_FixedSeed(t *testing.T) {
	a, seedA := NewRand(42)
	b, seedB := NewRand(42)
	if seedA != 42 || seedB != 42 {
		t.Fatalf("seeds = %d, %d, want 42", seedA, seedB)
	}
	for i := 0; i < 10; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestNewRand_ZeroSeedIsReplaced(t *testing.T) {
	rng, seed := NewRand(0)
	if rng == nil {
		t.Fatal("NewRand returned nil generator")
	}
	if seed <= 0 {
		t.Errorf("seed = %d, want positive", seed)
	}
}

func TestCryptoSeed(t *testing.T) {
	for i := 0; i < 100; i++ {
		if s := CryptoSeed(); s <= 0 {
			t.Fatalf("CryptoSeed() = %d, want positive", s)
		}
	}
}
