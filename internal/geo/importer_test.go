package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndex_CSV(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Index
	}{
		{
			name:  "semicolon with header",
			input: "CP;Lat;Lng\n31000;43.6045;1.4442\n75001;48.8566;2.3522\n",
			want:  Index{"31000": toulouse, "75001": paris},
		},
		{
			name:  "comma separated without header",
			input: "31000,43.6045,1.4442\r\n",
			want:  Index{"31000": toulouse},
		},
		{
			name:  "decimal comma with semicolons",
			input: "code_cp;latitude;longitude\n31000;43,6045;1,4442\n",
			want:  Index{"31000": toulouse},
		},
		{
			name:  "blank lines and extra columns",
			input: "\n\n31000 ; 43.6045 ; 1.4442 ; Toulouse\n\n",
			want:  Index{"31000": toulouse},
		},
		{
			name:  "malformed rows are dropped",
			input: "3100;43.6;1.4\n31000;43.6045;1.4442\nABCDE;1;2\n75001;north;2.35\n13001;43.3\n",
			want:  Index{"31000": toulouse},
		},
		{
			name:  "header only detected on first line",
			input: "31000;43.6045;1.4442\ncp;lat;lon\n",
			want:  Index{"31000": toulouse},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx, err := ParseIndex(strings.NewReader(tc.input), FormatCSV)
			require.NoError(t, err)
			assert.Equal(t, tc.want, idx)
		})
	}
}

func TestParseIndex_CSVOneValidOneMalformed(t *testing.T) {
	idx, err := ParseIndex(strings.NewReader("31000;43.6045;1.4442\n3100X;43.6;1.4\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestParseIndex_AllMalformed(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatJSON} {
		_, err := ParseIndex(strings.NewReader("bad;data;here\n"), format)
		assert.ErrorIs(t, err, ErrInvalidImport, "format %s", format)
	}

	_, err := ParseIndex(strings.NewReader(`{"310": [1, 2], "31000": ["x", 2], "75001": [1]}`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidImport)
}

func TestParseIndex_JSON(t *testing.T) {
	input := `{"31000": [43.6045, 1.4442], "75001": ["48.8566", "2.3522"], "13001": {"lat": 1}, "2A004": [41.9, 8.7]}`
	idx, err := ParseIndex(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Index{"31000": toulouse, "75001": paris}, idx)
}

func TestParseIndex_UnknownFormat(t *testing.T) {
	_, err := ParseIndex(strings.NewReader("31000;1;2"), Format("xlsx"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidImport)
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromFilename("base_cp.JSON"))
	assert.Equal(t, FormatDBF, FormatFromFilename("laposte.dbf"))
	assert.Equal(t, FormatCSV, FormatFromFilename("laposte.csv"))
	assert.Equal(t, FormatCSV, FormatFromFilename("laposte.txt"))
	assert.Equal(t, FormatCSV, FormatFromFilename("noext"))
}

func TestPointJSON(t *testing.T) {
	data, err := toulouse.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[43.6045, 1.4442]`, string(data))

	var p Point
	require.NoError(t, p.UnmarshalJSON(data))
	assert.Equal(t, toulouse, p)
	assert.Error(t, p.UnmarshalJSON([]byte(`[1]`)))
}

func TestIndexSanitized(t *testing.T) {
	idx := Index{"31000": toulouse, "310": paris}
	assert.Equal(t, Index{"31000": toulouse}, idx.Sanitized())
}
