package rpcapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "proto", c.Name())

	req := &CreateAccountRequest{Username: "alice", Credential: []byte("secret")}
	data, err := c.Marshal(req)
	require.NoError(t, err)

	var out CreateAccountRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, req.Username, out.Username)
	assert.Equal(t, req.Credential, out.Credential)
}
