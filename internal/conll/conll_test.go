// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conll

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

func sampleRecords() []types.AnnotatedRecord {
	outside := types.OutsideRecord(types.Token{Text: "Left", Span: types.Span{Start: 10, End: 14}})
	matched := types.AnnotatedRecord{
		Token:         "nodule",
		Gold:          types.None,
		Predicted:     "Adrenal",
		Confidence:    types.None,
		Span:          types.Span{Start: 15, End: 21},
		CUI:           types.None,
		SemanticType:  types.None,
		Negated:       "False",
		TermModifiers: "Negation=false;Subject=patient;Conditional=false;Rule_out=false",
	}
	return []types.AnnotatedRecord{outside, matched}
}

func TestWriter_Write(t *testing.T) {
	tests := []struct {
		name   string
		writer Writer
		want   string
	}{
		{
			name:   "all records without modifiers",
			writer: Writer{},
			want: "Left None O None 10:14 None None\n" +
				"nodule None Adrenal None 15:21 None None",
		},
		{
			name:   "with modifiers",
			writer: Writer{WithModifiers: true},
			want: "Left None O None 10:14 None None None None\n" +
				"nodule None Adrenal None 15:21 None None False Negation=false;Subject=patient;Conditional=false;Rule_out=false",
		},
		{
			name:   "silence outside",
			writer: Writer{SilenceOutside: true},
			want:   "nodule None Adrenal None 15:21 None None",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.writer.Write(&buf, sampleRecords()))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_EmptyAndUnsetFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Writer{}.Write(&buf, nil))
	assert.Empty(t, buf.String())

	line := Writer{WithModifiers: true}.Line(types.AnnotatedRecord{Token: "x", Span: types.Span{Start: 1, End: 2}})
	assert.Equal(t, "x None None None 1:2 None None None None", line)
}

func TestText(t *testing.T) {
	assert.Equal(t, "a_b", Text("a b"))
	assert.Equal(t, "a_b", Text("a \n\t b"))
	assert.Equal(t, "ab", Text(" ab\n"))
}

func TestRead_RoundTrip(t *testing.T) {
	for _, w := range []Writer{{}, {WithModifiers: true}} {
		var buf bytes.Buffer
		require.NoError(t, w.Write(&buf, sampleRecords()))

		got, err := Read(&buf)
		require.NoError(t, err)
		require.Len(t, got, 2)

		want := sampleRecords()
		if !w.WithModifiers {
			want[1].Negated = types.None
			want[1].TermModifiers = types.None
		}
		assert.Equal(t, want, got)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "a None O None 1:2 None"},
		{"eight columns", "a None O None 1:2 None None True"},
		{"bad span", "a None O None 12 None None"},
		{"non numeric span", "a None O None x:2 None None"},
		{"reversed span", "a None O None 5:2 None None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader("ok None O None 0:2 None None\n" + tt.input))
			require.ErrorIs(t, err, ErrMalformedLine)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestRead_SkipsBlankLines(t *testing.T) {
	got, err := Read(strings.NewReader("\na None O None 0:1 None None\n\n"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
