package logging

import (
	"github.com/google/uuid"
)

// RequestIDGenerator generates request ids of the form {prefix}_{uuid}
type RequestIDGenerator struct {
	prefix string
}

func NewRequestIDGenerator(prefix string) *RequestIDGenerator {
	if prefix == "" {
		prefix = "req"
	}
	return &RequestIDGenerator{prefix: prefix}
}

// Generate creates a new unique request ID
func (g *RequestIDGenerator) Generate() string {
	return g.prefix + "_" + uuid.NewString()
}

var defaultGenerator = NewRequestIDGenerator("req")

// GenerateRequestID generates a request ID using the default generator
func GenerateRequestID() string {
	return defaultGenerator.Generate()
}
