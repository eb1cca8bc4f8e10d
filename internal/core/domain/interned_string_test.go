package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	is1 := domain.NewInternedString("main-js")
	is2 := domain.NewInternedString("main-js")

	assert.Equal(t, is1.Value(), is2.Value())
	assert.Equal(t, "main-js", is1.String())
	assert.False(t, is1.IsZero())
}

func TestInternedString_Zero(t *testing.T) {
	var is domain.InternedString

	assert.True(t, is.IsZero())
	assert.Empty(t, is.String())
}

func TestInternedString_JSON(t *testing.T) {
	type payload struct {
		Name domain.InternedString `json:"name"`
	}

	data, err := json.Marshal(payload{Name: domain.NewInternedString("render")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"render"}`, string(data))

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, domain.NewInternedString("render"), out.Name)
}

func TestStrings(t *testing.T) {
	in := []string{"clean", "copy-assets", "render"}
	assert.Equal(t, in, domain.Strings(domain.NewInternedStrings(in)))
}
