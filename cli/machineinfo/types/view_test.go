package types

import (
	"encoding/json"
	"testing"

	"github.com/sh-dot/machineinfo/libs/reconcile"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		in       string
		expected View
		err      bool
	}{
		{in: "distributor", expected: View(reconcile.ViewDistributor)},
		{in: " Trunk ", expected: View(reconcile.ViewTrunk)},
		{in: "", expected: View(reconcile.ViewDistributor)},
		{in: "dealer", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseView(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownView)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestViewEncoding(t *testing.T) {
	var v View
	assert.NoError(t, json.Unmarshal([]byte(`"TRUNK"`), &v))
	assert.Equal(t, reconcile.ViewTrunk, v.Reconcile())

	assert.Error(t, json.Unmarshal([]byte(`"dealer"`), &v))

	b, err := json.Marshal(View(reconcile.ViewDistributor))
	assert.NoError(t, err)
	assert.Equal(t, `"distributor"`, string(b))

	_, err = json.Marshal(View("dealer"))
	assert.Error(t, err)

	var cfg struct {
		View View `yaml:"view"`
	}
	assert.NoError(t, yaml.Unmarshal([]byte("view: Distributor\n"), &cfg))
	assert.Equal(t, View(reconcile.ViewDistributor), cfg.View)
}
