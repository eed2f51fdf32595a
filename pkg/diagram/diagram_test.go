package diagram

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewKey(t *testing.T) {
	assert.Equal(t, "dim_0_dir_1", ViewKey(0, 1))
	assert.Equal(t, "dim_1_dir_12", ViewKey(1, 12))
	assert.Equal(t, []string{"dim_0_dir_1", "dim_1_dir_1", "dim_0_dir_2", "dim_1_dir_2"}, ViewKeys(2))
	assert.Empty(t, ViewKeys(0))
}

func TestParseViewKey(t *testing.T) {
	tests := []struct {
		key     string
		wantDim int
		wantDir int
		wantErr bool
	}{
		{key: "dim_0_dir_1", wantDim: 0, wantDir: 1},
		{key: "dim_1_dir_32", wantDim: 1, wantDir: 32},
		{key: "dim_2_dir_1", wantErr: true},
		{key: "dim_0_dir_0", wantErr: true},
		{key: "dim_0_dir_01", wantErr: true},
		{key: "dim_0_dir_+1", wantErr: true},
		{key: "dim_0_dir_1x", wantErr: true},
		{key: "dim_0", wantErr: true},
		{key: "meta", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			dim, dir, err := ParseViewKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidViewKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDim, dim)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestPointJSON(t *testing.T) {
	d := Diagram{{Birth: -0.5, Death: 0.25}, {Birth: -1, Death: math.Inf(1)}}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `[[-0.5,0.25],[-1,null]]`, string(data))

	var got Diagram
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, d, got)

	var p Point
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[null,1]`), &p))
}

func TestDiagram(t *testing.T) {
	d := Diagram{{Birth: 1, Death: math.Inf(1)}, {Birth: 0, Death: 2}, {Birth: 0, Death: 1}}
	d.Sort()

	assert.Equal(t, Diagram{{Birth: 0, Death: 1}, {Birth: 0, Death: 2}, {Birth: 1, Death: math.Inf(1)}}, d)
	assert.Equal(t, Diagram{{Birth: 0, Death: 1}, {Birth: 0, Death: 2}}, d.Finite())
	assert.True(t, d[2].Essential())
	assert.Equal(t, 2.0, d[1].Persistence())
}
