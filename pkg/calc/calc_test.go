package calc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/exactmass/internal/testutil"
	"github.com/ChrisMcGann/exactmass/pkg/core"
)

func newTable(t *testing.T) *core.Table {
	t.Helper()
	columns := append(core.DefaultIonColumns(),
		core.IonColumn{Name: "[M-H2O+H]+", Delete: "H2O", Charge: 1},
		core.IonColumn{Name: "RT", RetentionTime: true},
	)
	return core.NewTable(columns)
}

func TestApply(t *testing.T) {
	table := newTable(t)
	water := table.AddRow("water", "H2O")
	oxygen := table.AddRow("oxygen", "O")
	broken := table.AddRow("broken", "h2o")
	empty := table.AddRow("", "")

	water.Cells[6] = "1.25"
	broken.Cells[0] = "stale"
	empty.Cells[1] = "stale"

	cfg := &Config{Precision: 4, Threads: 2, Logger: testutil.NewTestLogger(t)}
	summary, err := cfg.Apply(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, []string{"18.0106", "17.0033", "19.0178", "40.9998", "56.9737", NotAvailable, "1.25"}, water.Cells)
	assert.False(t, water.Invalid)

	// O has no hydrogen to lose and no water to lose; water minus water is nothing.
	assert.Equal(t, "15.9949", oxygen.Cells[0])
	assert.Equal(t, Failed, oxygen.Cells[1])
	assert.Equal(t, NotAvailable, oxygen.Cells[5])

	assert.True(t, broken.Invalid)
	assert.Equal(t, []string{"", "", "", "", "", "", ""}, broken.Cells)

	assert.Equal(t, "", empty.Cells[1])
	assert.False(t, empty.Invalid)

	assert.Equal(t, Summary{Rows: 3, Computed: 9, InvalidRows: 1, FailedCells: 3}, summary)
}

func TestApplyPrecision(t *testing.T) {
	for _, tt := range []struct {
		precision int32
		want      string
	}{
		{0, "19"},
		{2, "19.02"},
		{6, "19.017841"},
	} {
		table := newTable(t)
		row := table.AddRow("water", "H2O")

		cfg := &Config{Precision: tt.precision}
		_, err := cfg.Apply(context.Background(), table)
		require.NoError(t, err)
		assert.Equal(t, tt.want, row.Cells[2])
	}
}

func TestApplyClearsInvalidFlag(t *testing.T) {
	table := newTable(t)
	row := table.AddRow("water", "h2o")

	cfg := &Config{Precision: 4}
	_, err := cfg.Apply(context.Background(), table)
	require.NoError(t, err)
	require.True(t, row.Invalid)

	row.Formula = "H2O"
	_, err = cfg.Apply(context.Background(), table)
	require.NoError(t, err)
	assert.False(t, row.Invalid)
	assert.Equal(t, "18.0106", row.Cells[0])
}

func TestApplyInvalidTable(t *testing.T) {
	table := core.NewTable([]core.IonColumn{{Name: "[M+H]+", Charge: 1}})
	cfg := &Config{Precision: 4}
	_, err := cfg.Apply(context.Background(), table)

	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestApplyCancelled(t *testing.T) {
	table := newTable(t)
	for range 10 {
		table.AddRow("water", "H2O")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{Precision: 4, Threads: 4}
	_, err := cfg.Apply(ctx, table)
	assert.ErrorIs(t, err, context.Canceled)
}
