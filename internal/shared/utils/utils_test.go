package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	a := map[string]any{"b": 1, "a": []any{"x", true}, "c": map[string]any{"z": nil, "y": 2.5}}
	b := map[string]any{"c": map[string]any{"y": 2.5, "z": nil}, "a": []any{"x", true}, "b": 1}

	outA, err := MarshalCanonical(a)
	require.NoError(t, err)
	outB, err := MarshalCanonical(b)
	require.NoError(t, err)

	assert.Equal(t, string(outA), string(outB))
	assert.Equal(t, `{"a":["x",true],"b":1,"c":{"y":2.5,"z":null}}`, string(outA))
}

func TestMarshalCanonicalNoHTMLEscapeAndNFC(t *testing.T) {
	// "é" as e + combining acute accent must match the precomposed form
	decomposed := "cafe\u0301 <b>&"
	composed := "caf\u00e9 <b>&"

	outA, err := MarshalCanonical(map[string]string{"q": decomposed})
	require.NoError(t, err)
	outB, err := MarshalCanonical(map[string]string{"q": composed})
	require.NoError(t, err)

	assert.Equal(t, outA, outB)
	assert.Contains(t, string(outA), "<b>&")
}

func TestHasherAlgorithms(t *testing.T) {
	sha := DefaultHasher()
	blake := NewHasher(BLAKE2b)

	assert.Len(t, sha.HashString("abc"), 64)
	assert.Len(t, blake.HashString("abc"), 64)
	assert.NotEqual(t, sha.HashString("abc"), blake.HashString("abc"))
	assert.Equal(t, sha.HashString("abc"), sha.HashString("abc"))
}

func TestHasherDomainSeparation(t *testing.T) {
	h := DefaultHasher()
	assert.NotEqual(t, h.HashString("payload"), h.WithDomain("query").HashString("payload"))
	assert.NotEqual(t, h.WithDomain("a").HashString("payload"), h.WithDomain("b").HashString("payload"))
}

func TestHashCanonicalIgnoresKeyOrder(t *testing.T) {
	h := DefaultHasher()
	first, err := h.HashCanonical(map[string]any{"x": 1, "y": "two"})
	require.NoError(t, err)
	second, err := h.HashCanonical(map[string]any{"y": "two", "x": 1})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHashFieldsUnordered(t *testing.T) {
	h := DefaultHasher()
	assert.Equal(t, h.HashFields("a", "b", "c"), h.HashFields("c", "a", "b"))
}

func TestFoldHelpers(t *testing.T) {
	assert.True(t, ContainsFold("Data Bot", "data"))
	assert.False(t, ContainsFold("Secure Bot", "data"))
	assert.True(t, EqualFold("Analytics", "ANALYTICS"))
	assert.Equal(t, 0, CompareFold("alpha", "ALPHA"))
	assert.Negative(t, CompareFold("alpha", "Beta"))
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		max      int
		required bool
		wantErr  bool
	}{
		{"required blank", "  ", 10, true, true},
		{"optional blank", "", 10, false, false},
		{"within limit", "hello", 10, true, false},
		{"too long", "hello world", 5, false, true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), 10, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.value, "field", tt.max, tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("agent_01HZX", "id"))
	assert.Error(t, ValidateID("", "id"))
	assert.Error(t, ValidateID("bad id!", "id"))
}

func TestSanitizer(t *testing.T) {
	s := NewSanitizer()
	assert.Equal(t, "Hello world", s.Text("<script>alert(1)</script>Hello <b>world</b>"))
	assert.Equal(t, "R&D", s.Text("R&D"))
	assert.Nil(t, s.List(nil))
	assert.Equal(t, []string{"a", "b"}, s.List([]string{"<i>a</i>", " b "}))
}

func TestToUTF8(t *testing.T) {
	plain := []byte("déjà vu")
	out, err := ToUTF8(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	// ISO-8859-1 encoded French prose
	latin1 := []byte("Le caf\xe9 de la gare est ferm\xe9 le dimanche. L'\xe9quipe pr\xe9pare la r\xe9ouverture " +
		"et le menu sera modifi\xe9 pour l'\xe9t\xe9. Les clients fid\xe8les seront invit\xe9s \xe0 go\xfbter les plats.")
	out, err = ToUTF8(latin1)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(out))
	assert.Contains(t, string(out), "café de la gare")
}
