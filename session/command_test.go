package session

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{in: `{"command":"add","key":"k","value":"v"}`, want: Add{Key: "k", Value: "v"}},
		{in: `{"command":"search","term":"my key"}`, want: Search{Term: "my key"}},
		{in: `{"command":"show"}`, want: Show{}},
		{in: `{"command":"show","indices":[0,2]}`, want: Show{Indices: []ResultPosition{0, 2}}},
		{in: `{"command":"delete","indices":[1]}`, want: Delete{Indices: []ResultPosition{1}}},
		{in: `{"command":"stats"}`, want: Stats{}},
		{in: `{"command":"quit"}`, want: Quit{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	_, err := ParseCommand([]byte(`{"command":"rename"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCommand))
	assert.Contains(t, err.Error(), `"rename"`)

	_, err = ParseCommand([]byte(`{}`))
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	_, err = ParseCommand([]byte(`{"command":`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownCommand))

	_, err = ParseCommand([]byte(`{"command":"show","indices":"all"}`))
	require.Error(t, err)
}

func TestResponseJSON(t *testing.T) {
	data, err := json.Marshal(Response{
		Status:  StatusOK,
		Command: KindSearch,
		Values:  []Entry{{Key: "k", Value: "v"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"ok","command":"search","values":[{"key":"k","value":"v"}]}`, string(data))

	data, err = json.Marshal(ErrorResponse(errors.Wrap(ErrOutOfRange, "no search results")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"error","error":"no search results: index out of range"}`, string(data))

	data, err = json.Marshal(Response{
		Status:  StatusOK,
		Command: KindStats,
		Stats:   &StatsValues{Status: StatusOK, DecryptionRate: 0.5, Entries: 2},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"ok","command":"stats","stats":{"status":"ok","decryption_rate":0.5,"entries":2}}`, string(data))
}
