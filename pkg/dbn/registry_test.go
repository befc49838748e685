package dbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dbnplot/pkg/errors"
)

func TestAttachDuplicateName(t *testing.T) {
	tests := []struct {
		name  string
		first Template
		again Template
	}{
		{"identical", Template{Name: "X"}, Template{Name: "X"}},
		{"different type", Template{Name: "X"}, Template{Name: "X", Type: Variable, ParentsNow: []string{"X"}}},
		{"different position", Template{Name: "X", X: 1}, Template{Name: "X", Y: 4}},
		{"empty names", Template{}, Template{Continuous: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Attach(tt.first))

			err := reg.Attach(tt.again)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeDuplicateName), "got %v", err)
			assert.Equal(t, 1, reg.Len())
		})
	}
}

func TestAttachTracksMaxima(t *testing.T) {
	reg := NewRegistry()
	assert.Zero(t, reg.MaxX())
	assert.Zero(t, reg.MaxY())

	require.NoError(t, reg.Attach(Template{Name: "A", X: 2, Y: 0.5}))
	require.NoError(t, reg.Attach(Template{Name: "B", X: 1, Y: 3}))

	assert.Equal(t, 2.0, reg.MaxX())
	assert.Equal(t, 3.0, reg.MaxY())

	// A failed attach leaves the maxima alone.
	require.Error(t, reg.Attach(Template{Name: "A", X: 10, Y: 10}))
	assert.Equal(t, 2.0, reg.MaxX())
	assert.Equal(t, 3.0, reg.MaxY())
}

func TestTemplatesKeepAttachOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Z", "A", "M"} {
		require.NoError(t, reg.Attach(Template{Name: name}))
	}

	var names []string
	for _, tpl := range reg.Templates() {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{"Z", "A", "M"}, names)
}

func TestRegistryDoesNotAliasCallerSlices(t *testing.T) {
	parents := []string{"X"}
	reg := NewRegistry()
	require.NoError(t, reg.Attach(Template{Name: "X", ParentsPrevious: parents}))

	parents[0] = "mutated"
	got, ok := reg.Get("X")
	require.True(t, ok)
	assert.Equal(t, []string{"X"}, got.ParentsPrevious)

	got.ParentsPrevious[0] = "mutated again"
	again, _ := reg.Get("X")
	assert.Equal(t, "X", again.ParentsPrevious[0])
}

func TestValidate(t *testing.T) {
	base := func() *Registry {
		reg := NewRegistry()
		_ = reg.Attach(Template{Name: "X", Y: 1, ParentsPrevious: []string{"X"}})
		return reg
	}

	tests := []struct {
		name    string
		tpl     Template
		wantErr bool
	}{
		{"hidden", Template{Name: "H", ParentsNow: []string{"X"}}, false},
		{"observed continuous", Template{Name: "Y", Type: Observed, Continuous: true, ParentsNow: []string{"X"}}, false},
		{"shared variable", Template{Name: "S", Type: Variable, ParentsNow: []string{"X"}}, false},
		{"first-slice variable", Template{Name: "P", Type: Variable, ParentsPrevious: []string{"X"}}, false},
		{"constant variable", Template{Name: "C", Type: Variable}, false},

		{"continuous variable", Template{Name: "S", Type: Variable, Continuous: true, ParentsNow: []string{"X"}}, true},
		{"variable with both parent lists", Template{Name: "S", Type: Variable, ParentsNow: []string{"X"}, ParentsPrevious: []string{"X"}}, true},
		{"negative x", Template{Name: "N", X: -1}, true},
		{"negative y", Template{Name: "N", Y: -0.5}, true},
		{"empty name", Template{Name: ""}, true},
		{"unknown parent", Template{Name: "U", ParentsNow: []string{"missing"}}, true},
		{"unknown type", Template{Name: "T", Type: NodeType(7)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := base()
			require.NoError(t, reg.Attach(tt.tpl))

			err := reg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidTemplate), "got %v", err)
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		tpl  Template
		want Role
	}{
		{Template{Type: Hidden}, RoleRandom},
		{Template{Type: Observed, ParentsPrevious: []string{"X"}, ParentsNow: []string{"X"}}, RoleRandom},
		{Template{Type: Variable, ParentsPrevious: []string{"X"}}, RoleFirstSlice},
		{Template{Type: Variable, ParentsNow: []string{"X"}}, RoleShared},
		{Template{Type: Variable}, RoleShared},
	}
	for _, tt := range tests {
		got, err := tt.tpl.Role()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "template %+v", tt.tpl)
	}
}

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		in      string
		want    NodeType
		wantErr bool
	}{
		{"", Hidden, false},
		{"hidden", Hidden, false},
		{"Observed", Observed, false},
		{" VARIABLE ", Variable, false},
		{"constant", Hidden, true},
	}
	for _, tt := range tests {
		got, err := ParseNodeType(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidTemplate), "ParseNodeType(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustRoundTrip(t, got))
	}
}

func mustRoundTrip(t *testing.T, nt NodeType) NodeType {
	t.Helper()
	text, err := nt.MarshalText()
	require.NoError(t, err)
	var back NodeType
	require.NoError(t, back.UnmarshalText(text))
	return back
}

func TestParamsAreCopied(t *testing.T) {
	src := map[string]string{"fill": "red"}
	p := NewParams(src)
	src["fill"] = "blue"
	src["stroke"] = "black"

	v, ok := p.Get("fill")
	require.True(t, ok)
	assert.Equal(t, "red", v)
	assert.Equal(t, 1, p.Len())

	m := p.Map()
	m["fill"] = "green"
	v, _ = p.Get("fill")
	assert.Equal(t, "red", v)

	assert.Nil(t, Params{}.Map())
	assert.Empty(t, Params{}.Keys())
}
