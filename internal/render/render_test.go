package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nainya/docdiff/pkg/model"
)

func sampleDiff() *model.DocumentDiff {
	diff := model.NewDocumentDiff()
	dc := diff.InitSchema("dublincore")
	dc.PutField("title", model.NewSimplePropertyDiff(model.TypeString, model.Str("Hello"), model.Str("World")))

	contributors := model.NewListPropertyDiff(model.TypeScalarList)
	contributors.Put(2, model.NewSimplePropertyDiff(model.TypeString, nil, model.Str("bob")))
	contributors.Put(0, model.NewSimplePropertyDiff(model.TypeString, model.Str("joe"), model.Str("jack")))
	dc.PutField("contributors", contributors)

	content := model.NewContentPropertyDiff()
	content.DifferenceType = model.DifferentFilename
	content.Left.Filename, content.Right.Filename = model.Str("a.txt"), model.Str("b.txt")
	diff.InitSchema("file").PutField("content", content)
	return diff
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	rows := Rows(sampleDiff())
	require.Len(t, rows, 4)

	assert.Equal(t, "dublincore:contributors[0]", rows[0].Path)
	assert.Equal(t, "dublincore:contributors[2]", rows[1].Path)
	assert.Nil(t, rows[1].Left)
	assert.Equal(t, "dublincore:title", rows[2].Path)
	assert.Equal(t, "file:content/filename", rows[3].Path)
	assert.Equal(t, string(model.DifferentFilename), rows[3].Type)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Renderer{Format: FormatText, NoColor: true}.Render(&buf, sampleDiff()))

	out := buf.String()
	assert.Contains(t, out, "dublincore:title")
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "World")
	assert.Contains(t, out, "file:content/filename")

	buf.Reset()
	require.NoError(t, Renderer{Format: FormatText}.Render(&buf, model.NewDocumentDiff()))
	assert.Equal(t, "No differences\n", buf.String())
}

func TestRenderJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Renderer{Format: FormatJSON}.Render(&buf, sampleDiff()))

	decoded := model.NewDocumentDiff()
	require.NoError(t, decoded.UnmarshalJSON(buf.Bytes()))
	assert.Equal(t, sampleDiff(), decoded)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Renderer{Format: FormatYAML}.Render(&buf, sampleDiff()))

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	decoded, err := model.DecodeDocumentDiff(raw)
	require.NoError(t, err)
	assert.Equal(t, sampleDiff(), decoded)
}
