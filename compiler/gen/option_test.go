package gen

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xrmgen/compiler/load"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, load.FetchAllThreshold, c.FetchAllThreshold)
	assert.NotNil(t, c.Logger)
	assert.Empty(t, c.Entities)
	assert.Nil(t, c.Mapping)
	assert.False(t, c.IncludeNonStandard)
	assert.False(t, c.IncludeUnpublished)
}

func TestWithNamespace(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithNamespace("  Contoso.Crm ")(c))
	assert.Equal(t, "Contoso.Crm", c.Namespace)
}

func TestWithEntities(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"plain", []string{"account", "contact"}, []string{"account", "contact"}},
		{"trimmed", []string{" account ", "contact\t"}, []string{"account", "contact"}},
		{"blank dropped", []string{"account", "", "  "}, []string{"account"}},
		{"duplicates keep first", []string{"lead", "account", "lead"}, []string{"lead", "account"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			require.NoError(t, WithEntities(tt.input...)(c))
			assert.Equal(t, tt.expected, c.Entities)
		})
	}
}

func TestParseEntityList(t *testing.T) {
	assert.Equal(t, []string{"account", "contact", "lead"}, ParseEntityList("account, contact ,lead"))
	assert.Equal(t, []string{"account"}, ParseEntityList("account,,"))
	assert.Empty(t, ParseEntityList(""))

	c := &Config{}
	require.NoError(t, WithEntityList("account,contact,lead,opportunity,systemuser")(c))
	assert.Len(t, c.Entities, 5)
}

func TestWithFlags(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Apply(WithIncludeNonStandard(true), WithIncludeUnpublished(true)))
	assert.True(t, c.IncludeNonStandard)
	assert.True(t, c.IncludeUnpublished)
}

func TestWithMapping(t *testing.T) {
	m := load.Mapping{"account": {CodeName: "Customer"}}
	c := &Config{}
	require.NoError(t, WithMapping(m)(c))
	assert.Equal(t, m, c.Mapping)

	require.NoError(t, WithMapping(nil)(c))
	assert.Nil(t, c.Mapping)
}

func TestWithMappingFile(t *testing.T) {
	t.Run("sets path", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithMappingFile("entities.mapping.json")(c))
		assert.Equal(t, "entities.mapping.json", c.MappingFile)
	})

	t.Run("empty path returns error", func(t *testing.T) {
		c := &Config{}
		err := WithMappingFile(" ")(c)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithFetchAllThreshold(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"positive", 5, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithFetchAllThreshold(tt.n)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.n, c.FetchAllThreshold)
		})
	}
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithLogger(slog.Default())(c))
	assert.NotNil(t, c.Logger)

	err := WithLogger(nil)(c)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestConfigApply(t *testing.T) {
	t.Run("stops at first error", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(WithFetchAllThreshold(0), WithNamespace("ns"))
		require.Error(t, err)
		assert.Empty(t, c.Namespace)
	})

	t.Run("ApplyAll collects errors", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(WithFetchAllThreshold(0), WithLogger(nil), WithNamespace("ns"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FetchAllThreshold")
		assert.Contains(t, err.Error(), "Logger")
		assert.Equal(t, "ns", c.Namespace)
	})
}

func TestNewConfigError(t *testing.T) {
	_, err := NewConfig(WithFetchAllThreshold(-1))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	assert.Panics(t, func() { MustNewConfig(WithLogger(nil)) })
	assert.NotPanics(t, func() { MustNewConfig(WithNamespace("ns")) })
}

func TestConfigWith(t *testing.T) {
	base := MustNewConfig(WithEntities("account", "contact"), WithNamespace("A"))

	next, err := base.With(WithNamespace("B"), WithEntities("lead"))
	require.NoError(t, err)
	assert.Equal(t, "B", next.Namespace)
	assert.Equal(t, []string{"lead"}, next.Entities)

	assert.Equal(t, "A", base.Namespace, "original config is unchanged")
	assert.Equal(t, []string{"account", "contact"}, base.Entities)

	_, err = base.With(WithFetchAllThreshold(0))
	require.Error(t, err)
}
