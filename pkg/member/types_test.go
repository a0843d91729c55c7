package member

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAvailable(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"Y", true, false},
		{"n", false, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAvailable(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseApprovalStatusAndListType(t *testing.T) {
	s, err := ParseApprovalStatus(" approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseApprovalStatus("done")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	lt, err := ParseListType("PRO")
	require.NoError(t, err)
	assert.Equal(t, ListPro, lt)

	_, err = ParseListType("")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := ParseIDList(a.String() + ", " + b.String() + ",")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseIDList("12")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
