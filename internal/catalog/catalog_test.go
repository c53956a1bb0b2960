package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/buffer"
	"github.com/relcore/relcore/internal/storage"
)

// TestCatalog_SchemaRoundTrip is spec §8 scenario #6.
func TestCatalog_SchemaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := storage.Dir{Path: dir}
	bm := buffer.NewManager(fs, 8, 1)

	schema := Schema{
		Relations: []Relation{
			{
				Name: "Person",
				Columns: []Column{
					{Name: "name", Type: TypeVarchar, Width: 128, Attr: NotNull},
					{Name: "age", Type: TypeInteger, Attr: NotNull},
				},
			},
		},
	}

	require.NoError(t, Save(bm, 0, schema))
	require.NoError(t, bm.Shutdown())

	bm2 := buffer.NewManager(fs, 8, 2)
	loaded, err := Load(bm2, 0)
	require.NoError(t, err)
	require.Equal(t, schema, loaded)
}

func TestCatalog_EmptySchemaRoundTrip(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 4, 1)

	require.NoError(t, Save(bm, 0, Schema{}))
	loaded, err := Load(bm, 0)
	require.NoError(t, err)
	require.Equal(t, Schema{Relations: []Relation{}}, loaded)
}

func TestCatalog_MultiPageSchema(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 16, 1)

	var relations []Relation
	for i := 0; i < 200; i++ {
		relations = append(relations, Relation{
			Name: "table_with_a_reasonably_long_name",
			Columns: []Column{
				{Name: "col_a", Type: TypeInteger, Attr: NotNull},
				{Name: "col_b", Type: TypeVarchar, Width: 64, Attr: Nullable},
			},
		})
	}
	schema := Schema{Relations: relations}

	require.NoError(t, Save(bm, 0, schema))
	loaded, err := Load(bm, 0)
	require.NoError(t, err)
	require.Equal(t, schema, loaded)
}
