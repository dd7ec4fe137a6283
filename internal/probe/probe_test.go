package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/yabai-cli/internal/wmerr"
)

type stubQuerier struct {
	out     string
	err     error
	block   bool
	domains []string
}

func (s *stubQuerier) Query(ctx context.Context, domain string) ([]byte, error) {
	s.domains = append(s.domains, domain)
	if s.block {
		<-ctx.Done()
		return nil, &wmerr.TransportError{ExitCode: -1, Timeout: true, Err: ctx.Err()}
	}
	return []byte(s.out), s.err
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name string
		q    *stubQuerier
		want bool
	}{
		{"healthy", &stubQuerier{out: `[{"id":1}]`}, true},
		{"no displays is still a valid answer", &stubQuerier{out: `[]`}, true},
		{"process failure", &stubQuerier{err: &wmerr.TransportError{ExitCode: 1}}, false},
		{"malformed output", &stubQuerier{out: `yabai-msg: failed to connect to socket`}, false},
		{"object instead of array", &stubQuerier{out: `{"id":1}`}, false},
		{"empty output", &stubQuerier{out: ``}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.q, time.Second)
			assert.Equal(t, tt.want, p.IsAvailable(context.Background()))
			assert.Equal(t, []string{"displays"}, tt.q.domains)
		})
	}
}

func TestIsAvailable_Timeout(t *testing.T) {
	p := New(&stubQuerier{block: true}, 50*time.Millisecond)

	start := time.Now()
	assert.False(t, p.IsAvailable(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewDefaultTimeout(t *testing.T) {
	p := New(&stubQuerier{}, 0)
	assert.Equal(t, DefaultTimeout, p.timeout)
}
