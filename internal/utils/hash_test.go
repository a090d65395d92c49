package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/MKhiriev/go-study-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "test-secret-key"

func TestInitHasherPoolAndHash(t *testing.T) {
	key := "secret-key"
	InitHasherPool(key)

	data := []byte("test-data")

	sum1 := Hash(data)
	sum2 := Hash(data)

	require.NotEmpty(t, sum1)
	assert.True(t, bytes.Equal(sum1, sum2), "hash must be deterministic for the same input")

	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	assert.Equal(t, h.Sum(nil), sum1)
}

func TestHash_MatchesHashString(t *testing.T) {
	InitHasherPool(testHashKey)

	body, err := json.Marshal(models.Deck{Title: "Go basics", Description: "channels"})
	require.NoError(t, err)

	assert.Equal(t, HashString(string(body), testHashKey), hex.EncodeToString(Hash(body)))
}

func TestHash_DifferentPayloads(t *testing.T) {
	InitHasherPool(testHashKey)

	b1, _ := json.Marshal(models.Note{Title: "a", Content: "one"})
	b2, _ := json.Marshal(models.Note{Title: "b", Content: "two"})

	assert.NotEqual(t, Hash(b1), Hash(b2))
}

func TestHash_DifferentKeys(t *testing.T) {
	body, _ := json.Marshal(models.Flashcard{Front: "q", Back: "a"})

	InitHasherPool("key-one")
	h1 := Hash(body)

	InitHasherPool("key-two")
	h2 := Hash(body)

	assert.NotEqual(t, h1, h2)
}

func TestHash_ConcurrentUse(t *testing.T) {
	InitHasherPool(testHashKey)
	want := HashString("payload", testHashKey)

	done := make(chan string, 16)
	for range 16 {
		go func() { done <- hex.EncodeToString(Hash([]byte("payload"))) }()
	}
	for range 16 {
		assert.Equal(t, want, <-done)
	}
}

func TestEqualHash(t *testing.T) {
	a := HashString("x", testHashKey)
	assert.True(t, EqualHash(a, HashString("x", testHashKey)))
	assert.False(t, EqualHash(a, HashString("y", testHashKey)))
	assert.False(t, EqualHash(a, ""))
}
