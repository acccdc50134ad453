package logging

import (
	"strings"

	"github.com/google/uuid"
)

// RequestIDGenerator generates unique request IDs
type RequestIDGenerator struct {
	prefix string
}

// NewRequestIDGenerator creates a new request ID generator
func NewRequestIDGenerator(prefix string) *RequestIDGenerator {
	if prefix == "" {
		prefix = "req"
	}
	return &RequestIDGenerator{
		prefix: prefix,
	}
}

// Generate creates a new unique request ID
// Format: {prefix}_{uuid}
func (g *RequestIDGenerator) Generate() string {
	return g.prefix + "_" + uuid.NewString()
}

// GenerateShort creates a shorter request ID (for space-constrained contexts)
func (g *RequestIDGenerator) GenerateShort() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return g.prefix + "_" + id[:8]
}

// Default request ID generator
var defaultGenerator = NewRequestIDGenerator("req")

// GenerateRequestID generates a request ID using the default generator
func GenerateRequestID() string {
	return defaultGenerator.Generate()
}

// GenerateShortRequestID generates a short request ID using the default generator
func GenerateShortRequestID() string {
	return defaultGenerator.GenerateShort()
}
