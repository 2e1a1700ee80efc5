package auth

import "testing"

func TestHashAndCheckKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(key) != 43 {
		t.Errorf("key length = %d, want 43", len(key))
	}

	hash, err := HashKey(key)
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}
	if err := CheckKey(key, hash); err != nil {
		t.Errorf("CheckKey with the right key: %v", err)
	}
	if err := CheckKey(key+"x", hash); err == nil {
		t.Error("CheckKey accepted a wrong key")
	}

	other, _ := GenerateKey()
	if other == key {
		t.Error("GenerateKey returned the same key twice")
	}
}
