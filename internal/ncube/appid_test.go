package ncube

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationIDValidation(t *testing.T) {
	tests := []struct {
		name    string
		tenant  string
		app     string
		version string
		status  ReleaseStatus
		branch  string
		wantErr bool
	}{
		{"valid", "NONE", "rates", "1.0.0", StatusSnapshot, HeadBranch, false},
		{"lowercase status", "NONE", "rates", "1.0.0", "snapshot", "feature-1", false},
		{"empty tenant", "", "rates", "1.0.0", StatusSnapshot, HeadBranch, true},
		{"reserved app", "NONE", "ra/tes", "1.0.0", StatusSnapshot, HeadBranch, true},
		{"two part version", "NONE", "rates", "1.0", StatusSnapshot, HeadBranch, true},
		{"alpha version", "NONE", "rates", "1.a.0", StatusSnapshot, HeadBranch, true},
		{"bad status", "NONE", "rates", "1.0.0", "BETA", HeadBranch, true},
		{"empty branch", "NONE", "rates", "1.0.0", StatusSnapshot, "", true},
		{"branch with colon", "NONE", "rates", "1.0.0", StatusSnapshot, "a:b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewApplicationID(tt.tenant, tt.app, tt.version, tt.status, tt.branch)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrIllegalArgument))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestApplicationIDDerivedReturnsReceiver(t *testing.T) {
	head := MustApplicationID("NONE", "rates", "1.0.0", StatusSnapshot, HeadBranch)

	assert.Same(t, head, head.AsHead())
	assert.Same(t, head, head.AsSnapshot())
	same, err := head.CreateNewSnapshotID("1.0.0")
	require.NoError(t, err)
	assert.Same(t, head, same)

	rel := head.AsRelease()
	assert.NotSame(t, head, rel)
	assert.True(t, rel.IsRelease())
	assert.Same(t, rel, rel.AsRelease())

	branch, err := head.AsBranch("feature")
	require.NoError(t, err)
	assert.False(t, branch.IsHead())
	assert.True(t, branch.AsHead().Equal(head))

	next, err := rel.CreateNewSnapshotID("1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", next.Version())
	assert.True(t, next.IsSnapshot())
}

func TestApplicationIDEqualityIgnoresCase(t *testing.T) {
	a := MustApplicationID("Acme", "Rates", "1.0.0", StatusSnapshot, "Feature")
	b := MustApplicationID("ACME", "rates", "1.0.0", StatusSnapshot, "feature")
	c := MustApplicationID("ACME", "rates", "1.0.1", StatusSnapshot, "feature")

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.False(t, a.Equal(c))
	assert.True(t, a.SameApp(c))
}

func TestApplicationIDJSON(t *testing.T) {
	a := MustApplicationID("NONE", "rates", "2.3.4", StatusRelease, HeadBranch)
	data, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded ApplicationID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, a.Equal(&decoded))

	err = json.Unmarshal([]byte(`{"tenant":"NONE","app":"rates","version":"x","status":"SNAPSHOT","branch":"HEAD"}`), &decoded)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}
