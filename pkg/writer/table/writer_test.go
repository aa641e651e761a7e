package table

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/exactmass/pkg/core"
	reader "github.com/ChrisMcGann/exactmass/pkg/reader/table"
)

func newTable() *core.Table {
	table := core.NewTable([]core.IonColumn{
		{Name: "neutral"},
		{Name: "[M+H]+", Charge: 1},
		{Name: "RT", RetentionTime: true},
	})
	table.AddRow("water", "H2O").Cells = []string{"18.0106", "19.0178", "2.5"}
	table.AddRow("sugar, glucose", "C6H12O6")
	return table
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, newTable()))

	want := "name,compound,neutral,[M+H]+####1#no,RT#####yes\n" +
		"water,H2O,18.0106,19.0178,2.5\n" +
		"\"sugar, glucose\",C6H12O6,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRowCellCount(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader(newTable()))

	err := w.WriteRow(&core.Row{Name: "short", Formula: "H2", Cells: []string{"2.0157"}})
	assert.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "masses.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	want := newTable()
	require.NoError(t, WriteFile(path, want))

	got, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, want.Rows[0], got.Rows[0])
	assert.Equal(t, "sugar, glucose", got.Rows[1].Name)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileMode(t *testing.T) {
	tests := []struct {
		name     string
		existing os.FileMode // 0 means the file does not exist yet
		want     os.FileMode
	}{
		{"new file", 0, newFileMode},
		{"group readable", 0o640, 0o640},
		{"world writable", 0o666, 0o666},
		{"owner only", 0o600, 0o600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "masses.csv")
			if tt.existing != 0 {
				require.NoError(t, os.WriteFile(path, []byte("stale"), tt.existing))
				require.NoError(t, os.Chmod(path, tt.existing))
			}

			require.NoError(t, WriteFile(path, newTable()))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Mode().Perm())
		})
	}
}
