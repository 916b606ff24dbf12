package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "250", want: 250 * time.Millisecond},
		{in: " 1000 ", want: time.Second},
		{in: "250ms", want: 250 * time.Millisecond},
		{in: "1.5s", want: 1500 * time.Millisecond},
		{in: "-5", want: -5 * time.Millisecond},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid duration")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	var v struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 300\nb: 2s\n"), &v))
	assert.Equal(t, 300*time.Millisecond, v.A.Std())
	assert.Equal(t, 2*time.Second, v.B.Std())

	err := yaml.Unmarshal([]byte("a: [1]\n"), &v)
	require.Error(t, err)
}

func TestDuration_Text(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("750ms")))
	assert.Equal(t, "750ms", d.String())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "750ms", string(text))

	require.Error(t, d.UnmarshalText([]byte("x")))
}
