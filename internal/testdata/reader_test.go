package testdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/wesleyorama2/caserun/internal/config"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestRead_CSV(t *testing.T) {
	path := writeFile(t, "cases.csv", []byte(
		"url,method,params,expected_result\n"+
			`http://localhost:8080/login,POST,"{""user"": ""a""}","{""code"": 0}"`+"\n"))

	cases, err := Read(path, "utf-8")
	require.NoError(t, err)
	require.Len(t, cases, 1)

	assert.Equal(t, TestCase{
		"url":             "http://localhost:8080/login",
		"method":          "POST",
		"params":          `{"user": "a"}`,
		"expected_result": `{"code": 0}`,
	}, cases[0])
}

func TestRead_CSVWithBOMAndShortRows(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("case_id,url,method\n1,/a\n\n2,/b,GET\n")...)
	path := writeFile(t, "cases.CSV", content)

	cases, err := Read(path, "")
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "1", cases[0]["case_id"], "BOM must not leak into the first header")
	assert.Equal(t, "", cases[0]["method"])
	assert.Equal(t, "GET", cases[1]["method"])
}

func TestRead_CSVEncoding(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("case_id,description\n1,用户登录\n")
	require.NoError(t, err)
	path := writeFile(t, "cases.csv", []byte(encoded))

	cases, err := Read(path, "gbk")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "用户登录", cases[0].Description())
}

func TestRead_TSV(t *testing.T) {
	path := writeFile(t, "cases.tsv", []byte("case_id\turl\tparams\n7\t/x\t{\"a\": 1}\n"))

	cases, err := Read(path, "utf-8")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, `{"a": 1}`, cases[0]["params"])
}

func TestRead_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"case_id", "url", "method"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"1", "/users", "GET"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2", "/orders"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cases, err := Read(path, "utf-8")
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, TestCase{"case_id": "1", "url": "/users", "method": "GET"}, cases[0])
	assert.Equal(t, "", cases[1]["method"])
}

func TestRead_YAML(t *testing.T) {
	path := writeFile(t, "cases.yml", []byte(`
- case_id: 1
  url: /login
  params:
    user: a
  expected_result:
    code: 0
- case_id: 2
  url: /logout
`))

	cases, err := Read(path, "utf-8")
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "1", cases[0].ID())
	params, err := cases[0].Mapping(FieldParams)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"user": "a"}, params)
}

func TestRead_JSON(t *testing.T) {
	path := writeFile(t, "cases.json", []byte(`[{"case_id": "a", "url": "/x"}, {"case_id": "b", "url": "/y"}]`))

	cases, err := Read(path, "utf-8")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "b", cases[1].ID())
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  any
	}{
		{"Unsupported extension", "cases.xml", "<cases/>", new(*config.UnsupportedFormatError)},
		{"JSON object at top level", "cases.json", `{"case_id": 1}`, new(*config.ParseError)},
		{"Malformed JSON", "cases.json", `[{"case_id": 1`, new(*config.ParseError)},
		{"Trailing data after JSON array", "cases.json", `[{"url": "a"}] this is not json {`, new(*config.ParseError)},
		{"Second JSON value", "cases.json", `[{"url": "a"}] [{"url": "b"}]`, new(*config.ParseError)},
		{"Second YAML document", "cases.yaml", "- url: a\n---\n- url: b\n", new(*config.ParseError)},
		{"YAML sequence of scalars", "cases.yaml", "- a\n- b\n", new(*config.ParseError)},
		{"Malformed CSV quoting", "cases.csv", "a,b\n\"x,y\n", new(*config.ParseError)},
		{"Empty CSV", "cases.csv", "", new(*config.ParseError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, []byte(tt.content))

			_, err := Read(path, "utf-8")

			var readErr *config.DataReadError
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, path, readErr.Path)
			assert.Equal(t, "utf-8", readErr.Encoding)
			assert.ErrorAs(t, err, tt.target)
		})
	}
}

func TestRead_UnsupportedNamesExtension(t *testing.T) {
	_, err := Read("cases.XML", "utf-8")

	var unsupported *config.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".xml", unsupported.Ext)
	assert.Contains(t, err.Error(), ".xml")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.csv"), "utf-8")

	var notFound *config.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRead_UnknownEncoding(t *testing.T) {
	path := writeFile(t, "cases.csv", []byte("a\n1\n"))

	_, err := Read(path, "klingon")

	var readErr *config.DataReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "klingon", readErr.Encoding)
}
