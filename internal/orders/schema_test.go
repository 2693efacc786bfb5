package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Bonhoeffer Code": "bonhoeffercode",
		"bonhoeffer_code": "bonhoeffercode",
		"BONHOEFFERCODE":  "bonhoeffercode",
		"GP in %":         "gpin",
		"  Order-No. ":    "orderno",
		"Ünit Price":      "nitprice",
		"":                "",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestSchemaMapperEquivalentHeadersResolveAlike(t *testing.T) {
	m := NewSchemaMapper(nil)
	groups := [][]string{
		{"B. Code", "bcode", "B_CODE"},
		{"Bonhoeffer Code", "bonhoeffercode", "BONHOEFFER-CODE"},
		{"Sub Segment", "sub_segment", "SUBSEGMENT"},
	}
	for _, g := range groups {
		first, ok := m.Resolve(g[0])
		require.True(t, ok, g[0])
		for _, h := range g[1:] {
			got, ok := m.Resolve(h)
			require.True(t, ok, h)
			require.Equal(t, first, got, h)
		}
	}
}

func TestSchemaMapperProductCodeAliases(t *testing.T) {
	m := NewSchemaMapper(nil)
	for _, h := range []string{"B. Code", "bonhoeffercode", "Bonhorffer Code", "Product Code"} {
		f, ok := m.Resolve(h)
		require.True(t, ok, h)
		require.Equal(t, FieldProductCode, f, h)
	}
}

func TestSchemaMapperUnmappedAndEmpty(t *testing.T) {
	m := NewSchemaMapper(nil)
	_, ok := m.Resolve("Remarks")
	require.False(t, ok)
	_, ok = m.Resolve("%%")
	require.False(t, ok)
	_, ok = m.Lookup("")
	require.False(t, ok)
}

func TestSchemaMapperCustomAliases(t *testing.T) {
	m := NewSchemaMapper(map[string]Field{"PO Ref": FieldOrderNumber})
	f, ok := m.Resolve("po_ref")
	require.True(t, ok)
	require.Equal(t, FieldOrderNumber, f)

	_, ok = m.Resolve("Order No")
	require.False(t, ok)
}
