package failures

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"transport envuelto", fmt.Errorf("fetch: %w", ErrTransport), KindTransport},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), KindTransport},
		{"status", fmt.Errorf("%w: HTTP 503", ErrUpstreamStatus), KindStatus},
		{"payload", fmt.Errorf("decode: %w", ErrMalformedPayload), KindPayload},
		{"status gana sobre transport", fmt.Errorf("%w: %w", ErrUpstreamStatus, ErrTransport), KindStatus},
		{"desconocido", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
