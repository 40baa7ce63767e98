package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/finsight/internal/encoding"
)

func TestToUTF8(t *testing.T) {
	const text = "Descrição;Montante\nCafé;12,50\nOperação;-3,00\n"

	type args struct {
		input []byte
	}

	type testCase struct {
		name string
		args args
	}

	windows1252, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	tests := []testCase{
		{name: "utf-8 passes through", args: args{input: []byte(text)}},
		{name: "utf-8 bom is stripped", args: args{input: append([]byte{0xEF, 0xBB, 0xBF}, text...)}},
		{name: "utf-16 with bom", args: args{input: utf16le}},
		{name: "windows-1252", args: args{input: windows1252}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := encoding.ToUTF8(bytes.NewReader(tt.args.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, text, string(got))
		})
	}
}

func TestToUTF8_Empty(t *testing.T) {
	r, err := encoding.ToUTF8(bytes.NewReader(nil))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
