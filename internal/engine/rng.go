package engine

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// Stream is a deterministic random source derived from a server seed, a
// client seed, and a per-game nonce. Bytes come from successive HMAC-SHA256
// rounds keyed by the server seed over "clientSeed:nonce:round"; each float
// consumes exactly 4 bytes. The same inputs always produce the same stream,
// across processes and platforms.
type Stream struct {
	serverSeed string
	clientSeed string
	nonce      uint64
	round      uint64
	pos        int
	buffer     [32]byte
}

// NewStream creates a stream positioned at the first byte.
func NewStream(serverSeed, clientSeed string, nonce uint64) *Stream {
	s := &Stream{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
	}
	s.generateRound()
	return s
}

// Next returns the next byte from the stream.
func (s *Stream) Next() byte {
	if s.pos >= 32 {
		s.round++
		s.pos = 0
		s.generateRound()
	}
	b := s.buffer[s.pos]
	s.pos++
	return b
}

// NextFloat returns the next float in [0, 1), consuming 4 bytes.
func (s *Stream) NextFloat() float64 {
	b0 := s.Next()
	b1 := s.Next()
	b2 := s.Next()
	b3 := s.Next()
	return bytesToFloat([4]byte{b0, b1, b2, b3})
}

// Cursor reports how many bytes the stream has consumed. Useful in
// diagnostics when comparing two runs that diverged.
func (s *Stream) Cursor() uint64 {
	return s.round*32 + uint64(s.pos)
}

func (s *Stream) generateRound() {
	h := hmac.New(sha256.New, []byte(s.serverSeed))
	message := fmt.Sprintf("%s:%d:%d", s.clientSeed, s.nonce, s.round)
	h.Write([]byte(message))
	copy(s.buffer[:], h.Sum(nil))
}

// bytesToFloat converts exactly 4 bytes to a float64 in [0, 1).
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		divider := math.Pow(256, float64(i+1))
		result += float64(b) / divider
	}
	return result
}

// Floats generates count floats from a fresh stream. Convenience for callers
// that don't need to hold stream position across calls.
func Floats(serverSeed, clientSeed string, nonce uint64, count int) []float64 {
	s := NewStream(serverSeed, clientSeed, nonce)
	floats := make([]float64, count)
	for i := 0; i < count; i++ {
		floats[i] = s.NextFloat()
	}
	return floats
}

// HashServerSeed returns the hex SHA-256 commitment for a server seed. The
// hash is published before a game runs; the seed itself is revealed after
// completion so anyone can verify the play-by-play.
func HashServerSeed(serverSeed string) string {
	if serverSeed == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}

// NewServerSeed generates a fresh 32-byte hex server seed. Only the service
// layer calls this; the engine itself never draws ambient entropy.
func NewServerSeed() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate server seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
