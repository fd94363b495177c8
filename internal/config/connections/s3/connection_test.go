package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	ep, secure := splitEndpoint("http://localhost:9000/", true)
	assert.Equal(t, "localhost:9000", ep)
	assert.False(t, secure)

	ep, secure = splitEndpoint("https://s3.example.com", false)
	assert.Equal(t, "s3.example.com", ep)
	assert.True(t, secure)

	ep, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", ep)
	assert.True(t, secure)
}

func TestObjectPath(t *testing.T) {
	c, err := NewConnection(ConnectionInfo{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "accreditations"})
	require.NoError(t, err)
	assert.Equal(t, "s3://accreditations/documents/credencial/x.pdf", c.ObjectPath("documents/credencial/x.pdf"))
}
