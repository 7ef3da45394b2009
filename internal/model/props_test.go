package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectProps_OpenBagRoundTrip(t *testing.T) {
	p := &Project{
		ID:     "p1",
		Name:   "legacy",
		Status: StatusMapped,
		Extra:  Props{"uploaded_by": "ops", "archive_format": "zip"},
	}

	got := ProjectFromProps(p.ToProps())

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Status, got.Status)
	// Properties outside the named schema survive untouched.
	assert.Equal(t, "ops", got.Extra.String("uploaded_by"))
	assert.Equal(t, "zip", got.Extra.String("archive_format"))
}

func TestFileFromProps_KeepsUnknownKeys(t *testing.T) {
	props := Props{
		"path":     "a.py",
		"language": "python",
		"size":     float64(12), // JSON numbers decode as float64
		"encoding": "latin-1",
	}

	f := FileFromProps(props)
	assert.Equal(t, "a.py", f.Path)
	assert.Equal(t, int64(12), f.Size)
	assert.Equal(t, "latin-1", f.Extra.String("encoding"))
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusNeedsFeedback.Terminal())
	assert.False(t, StatusUploaded.Terminal())
}

func TestProps_Helpers(t *testing.T) {
	p := Props{"n": float64(7), "s": "x", "b": true}
	assert.Equal(t, int64(7), p.Int64("n"))
	assert.Equal(t, "x", p.String("s"))
	assert.True(t, p.Bool("b"))
	assert.Zero(t, p.Int64("missing"))

	clone := p.Clone()
	clone["s"] = "y"
	assert.Equal(t, "x", p.String("s"))

	require.NotPanics(t, func() {
		var nilProps Props
		nilProps.Merge(Props{})
	})
}
