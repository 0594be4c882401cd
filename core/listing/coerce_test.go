package listing

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/entity"
)

func TestCoerce(t *testing.T) {
	rec := map[string]interface{}{"id": float64(1)}

	tests := []struct {
		name    string
		payload interface{}
		want    []entity.RawRecord
		wantErr string
	}{
		{name: "nil", payload: nil, want: nil},
		{name: "bare array", payload: []interface{}{rec}, want: []entity.RawRecord{rec}},
		{name: "non-object elements skipped", payload: []interface{}{"x", rec, float64(2)}, want: []entity.RawRecord{rec}},
		{name: "typed slice", payload: []map[string]interface{}{rec}, want: []entity.RawRecord{rec}},
		{
			name: "envelope", payload: map[string]interface{}{"status": core.StatusSuccess, "data": []interface{}{rec}},
			want: []entity.RawRecord{rec},
		},
		{name: "data without status", payload: map[string]interface{}{"data": []interface{}{rec}}, want: []entity.RawRecord{rec}},
		{name: "data not an array", payload: map[string]interface{}{"data": rec}, want: nil},
		{name: "non-string status ignored", payload: map[string]interface{}{"status": float64(200), "data": []interface{}{rec}}, want: []entity.RawRecord{rec}},
		{
			name: "failed status", payload: map[string]interface{}{"status": "ERROR", "message": "Not allowed", "data": []interface{}{rec}},
			wantErr: "Not allowed",
		},
		{name: "scalar", payload: "hello", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.payload)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "server message", err: errors.Wrap(core.NewAPIError(500, "ERROR", "Database down"), "fetching"), want: "Database down"},
		{name: "transport cause", err: errors.Wrap(errors.New("Network Error"), "fetching sections"), want: "Network Error"},
		{name: "api error without message", err: core.NewAPIError(404, "", ""), want: "request failed: 404 Not Found"},
		{name: "fallback", err: errors.New(""), want: "failed to fetch sections"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err, "failed to fetch sections"))
		})
	}
}
