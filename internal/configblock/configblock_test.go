package configblock

import (
	"testing"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/placeholder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		wantKeys []string
		wantMap  map[string]string
		wantErr  error
	}{
		{
			name:     "backward reference",
			lines:    []string{"x = 1", "y = ${x}2"},
			wantKeys: []string{"x", "y"},
			wantMap:  map[string]string{"x": "1", "y": "12"},
		},
		{
			name:    "forward reference is undefined",
			lines:   []string{"y = ${z}2", "z = 1"},
			wantErr: ErrUndefinedConfigReference,
		},
		{
			name:    "undefined reference",
			lines:   []string{"y = ${z}2"},
			wantErr: ErrUndefinedConfigReference,
		},
		{
			name:    "malformed placeholder",
			lines:   []string{"cost = 5$"},
			wantErr: ErrInvalidConfigValue,
		},
		{
			name:     "name is last token of left side",
			lines:    []string{"# host = example.com", "- url = https://${host}/x"},
			wantKeys: []string{"host", "url"},
			wantMap:  map[string]string{"host": "example.com", "url": "https://example.com/x"},
		},
		{
			name:     "splits on first equals only",
			lines:    []string{"query = a=b&c=d"},
			wantKeys: []string{"query"},
			wantMap:  map[string]string{"query": "a=b&c=d"},
		},
		{
			name:     "later duplicate overrides",
			lines:    []string{"a = 1", "b = 2", "a = ${b}${a}"},
			wantKeys: []string{"a", "b"},
			wantMap:  map[string]string{"a": "21", "b": "2"},
		},
		{
			name:     "lines without equals or name are ignored",
			lines:    []string{"just text", " = orphan", ""},
			wantKeys: nil,
			wantMap:  map[string]string{},
		},
		{
			name:     "escaped dollar",
			lines:    []string{"price = $$5"},
			wantKeys: []string{"price"},
			wantMap:  map[string]string{"price": "$5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.lines, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, got.Keys())
			assert.Equal(t, tt.wantMap, got.Map())
		})
	}
}

func TestParse_WrapsPlaceholderError(t *testing.T) {
	t.Parallel()
	_, err := Parse([]string{"y = ${z}"}, nil)
	require.ErrorIs(t, err, ErrUndefinedConfigReference)
	require.ErrorIs(t, err, placeholder.ErrUndefinedReference)
	assert.Contains(t, err.Error(), "key 'y'")
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("reads block from document", func(t *testing.T) {
		doc := document.NewBuffer("# Notes\n" +
			"<!--CodeRunnerCONFIG-->\n" +
			"host = example.com\n" +
			"url = https://${host}\n" +
			"<!--/CodeRunnerCONFIG-->\n" +
			"```sh\ncurl $url\n```\n")

		cfg, err := Extract(doc, DefaultTag, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"host", "url"}, cfg.Keys())
		v, _ := cfg.Get("url")
		assert.Equal(t, "https://example.com", v)
	})

	t.Run("missing open marker yields empty config", func(t *testing.T) {
		doc := document.NewBuffer("host = example.com\n")
		cfg, err := Extract(doc, DefaultTag, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Len())
	})

	t.Run("missing close marker yields empty config", func(t *testing.T) {
		doc := document.NewBuffer("<!--CodeRunnerCONFIG-->\nhost = example.com\n")
		cfg, err := Extract(doc, DefaultTag, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Len())
	})

	t.Run("custom tag", func(t *testing.T) {
		doc := document.NewBuffer("<!--Defaults-->\na = 1\n<!--/Defaults-->\n")
		cfg, err := Extract(doc, "Defaults", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "1"}, cfg.Map())
	})

	t.Run("undefined reference fails", func(t *testing.T) {
		doc := document.NewBuffer("<!--CodeRunnerCONFIG-->\na = $b\n<!--/CodeRunnerCONFIG-->\n")
		_, err := Extract(doc, DefaultTag, nil)
		require.ErrorIs(t, err, ErrUndefinedConfigReference)
	})
}
