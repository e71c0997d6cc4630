package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wardenlabs/unionwarden/internal/database/types"
)

// stubResult is a canned sql.Result for exercising row-count mapping.
type stubResult struct {
	affected int64
	err      error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.affected, r.err }

func TestErrIfNoRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result stubResult
		want   error
	}{
		{
			name:   "zero rows surfaces sentinel",
			result: stubResult{affected: 0},
			want:   types.ErrUnionNotFound,
		},
		{
			name:   "deleted row is success",
			result: stubResult{affected: 1},
			want:   nil,
		},
		{
			name:   "unknown row count is success",
			result: stubResult{err: errors.New("driver does not support RowsAffected")},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errIfNoRows(tt.result, types.ErrUnionNotFound)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestErrIfNoRowsKeepsSentinelIdentity(t *testing.T) {
	t.Parallel()

	err := errIfNoRows(stubResult{affected: 0}, types.ErrLeaderNotFound)
	assert.ErrorIs(t, err, types.ErrLeaderNotFound)
	assert.NotErrorIs(t, err, types.ErrUnionNotFound)
}
