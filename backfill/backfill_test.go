package backfill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/model"
	"inbound/sheet/sheettest"
)

func envFor(store *sheettest.Store) appctx.Env {
	return appctx.New(store, "tester", nil, nil)
}

func TestProjectFromPOMaster(t *testing.T) {
	store := sheettest.New().
		Seed(model.TableMasterLog,
			[]string{"TXN_ID", "Project", "Customer_PO_Number"},
			[]string{"", "", ""}, // spacer
			[]string{"T1", "", "PO1"},
			[]string{"T2", "X", "PO2"},
			[]string{"T3", "", ""},
		).
		Seed(model.TablePOMaster,
			[]string{"Customer_PO", "Project"},
			[]string{"PO1", "Alpha"},
		)

	summary, err := ProjectFromPOMaster(context.Background(), envFor(store))
	require.NoError(t, err)
	assert.Equal(t, Summary{Updated: 1, MissingPO: 1, PONotFound: 0, MapSize: 1}, summary)

	log := store.Snapshot(model.TableMasterLog)
	assert.Equal(t, "Alpha", log.Rows[1][1])
	assert.Equal(t, "X", log.Rows[2][1], "existing project kept")
	assert.Equal(t, "", log.Rows[3][1])
	assert.Equal(t, "", log.Rows[0][1], "spacer untouched")

	assert.Equal(t, 1, store.Reads[model.TableMasterLog])
	assert.Equal(t, 1, store.Reads[model.TablePOMaster])
	assert.Equal(t, 1, store.Writes[model.TableMasterLog])
}

func TestProjectFromPOMaster_LastRowWinsAndNotFound(t *testing.T) {
	store := sheettest.New().
		Seed(model.TableMasterLog,
			[]string{"Customer_PO_Number", "Project"},
			[]string{"", ""},
			[]string{"po-1", ""},
			[]string{"PO-9", ""},
		).
		Seed(model.TablePOMaster,
			[]string{"Project", "Customer_PO"},
			[]string{"Old", "PO-1"},
			[]string{"New", " PO-1 "},
		)

	summary, err := ProjectFromPOMaster(context.Background(), envFor(store))
	require.NoError(t, err)
	assert.Equal(t, Summary{Updated: 1, PONotFound: 1, MapSize: 1}, summary)
	assert.Equal(t, "New", store.Snapshot(model.TableMasterLog).Rows[1][1])
}

func TestProjectFromPOMaster_NothingToWrite(t *testing.T) {
	store := sheettest.New().
		Seed(model.TableMasterLog, []string{"Customer_PO_Number", "Project"}, []string{"", ""}, []string{"PO1", "Set"}).
		Seed(model.TablePOMaster, []string{"Customer_PO", "Project"}, []string{"PO1", "Alpha"})

	summary, err := ProjectFromPOMaster(context.Background(), envFor(store))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, store.Writes[model.TableMasterLog])
}

func TestProjectFromPOMaster_FailsFast(t *testing.T) {
	tests := []struct {
		name  string
		store *sheettest.Store
	}{
		{"missing PO_Master", sheettest.New().
			Seed(model.TableMasterLog, []string{"Customer_PO_Number", "Project"}, []string{"", ""}, []string{"PO1", ""})},
		{"missing Master_Log", sheettest.New().
			Seed(model.TablePOMaster, []string{"Customer_PO", "Project"}, []string{"PO1", "A"})},
		{"missing Customer_PO column", sheettest.New().
			Seed(model.TableMasterLog, []string{"Customer_PO_Number", "Project"}, []string{"", ""}, []string{"PO1", ""}).
			Seed(model.TablePOMaster, []string{"PO", "Project"}, []string{"PO1", "A"})},
		{"missing Project column", sheettest.New().
			Seed(model.TableMasterLog, []string{"Customer_PO_Number"}, []string{""}, []string{"PO1"}).
			Seed(model.TablePOMaster, []string{"Customer_PO", "Project"}, []string{"PO1", "A"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProjectFromPOMaster(context.Background(), envFor(tt.store))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrConfig))
			assert.Equal(t, 0, tt.store.Writes[model.TableMasterLog])
		})
	}
}
