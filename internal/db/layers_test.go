package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestLayer_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	g, err := db.ReserveGroup("roundtrip", testTime)
	require.NoError(t, err)

	layer := &Layer{
		GroupID:      g.ID,
		LayerNumber:  4,
		ScandataFile: strPtr("w004_scandata.txt"),
		WelddatFile:  strPtr("w004_welddat.txt"),
	}
	points := []ScanPoint{
		{Seq: 1, X: 1, Y: 2, Z: 3, ScanRaw: floatPtr(10), ScanValue: floatPtr(20)},
		{Seq: 0, X: 0, Y: 0, Z: 0, ScanRaw: floatPtr(5), ScanValue: floatPtr(10), Speed: floatPtr(7.5)},
	}
	samples := []WeldSample{
		{Seq: 0, X: 0, Y: 0, Z: 0, WireFeedRate: floatPtr(8), TravelSpeed: floatPtr(6), Current: floatPtr(150), Voltage: floatPtr(22)},
		{Seq: 1, X: 1, Y: 0, Z: 0, WireFeedRate: floatPtr(8.1), Current: floatPtr(152)},
	}
	require.NoError(t, db.IngestLayer(layer, points, samples))
	require.NotEmpty(t, layer.ID)

	got, err := db.GetLayer(layer.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(layer, got); diff != "" {
		t.Errorf("layer mismatch (-want +got):\n%s", diff)
	}

	gotPoints, err := db.LayerWaypoints(layer.ID)
	require.NoError(t, err)
	want := []ScanPoint{points[1], points[0]}
	if diff := cmp.Diff(want, gotPoints); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	gotSamples, err := db.LayerSamples(layer.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(samples, gotSamples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestIngestLayer_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	g, err := db.ReserveGroup("rollback", testTime)
	require.NoError(t, err)

	layer := &Layer{GroupID: g.ID, LayerNumber: 1}
	dupSeq := []ScanPoint{{Seq: 0}, {Seq: 0}}
	assert.Error(t, db.IngestLayer(layer, dupSeq, nil))

	layers, err := db.ListLayers(g.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, layers, "failed ingest must not leave a layer behind")
}

func TestIngestLayer_UnknownGroup(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, db.IngestLayer(&Layer{GroupID: "nope", LayerNumber: 1}, nil, nil), "foreign keys are enforced")
}

func TestListLayers_OrderAndPaging(t *testing.T) {
	db := setupTestDB(t)
	g, err := db.ReserveGroup("paged", testTime)
	require.NoError(t, err)

	for _, n := range []int{3, 1, 2, 5, 4} {
		require.NoError(t, db.IngestLayer(&Layer{GroupID: g.ID, LayerNumber: n}, nil, nil))
	}

	layers, err := db.ListLayers(g.ID, 25, 0)
	require.NoError(t, err)
	numbers := make([]int, len(layers))
	for i, l := range layers {
		numbers[i] = l.LayerNumber
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, numbers)

	page, err := db.ListLayers(g.ID, 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 4, page[0].LayerNumber)
	assert.Equal(t, 5, page[1].LayerNumber)
}

func TestGetLayer_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetLayer("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestLayer_OptionalColumns(t *testing.T) {
	db := setupTestDB(t)
	g, err := db.ReserveGroup("sparse", testTime)
	require.NoError(t, err)
	layer := &Layer{GroupID: g.ID, LayerNumber: 1}
	require.NoError(t, db.IngestLayer(layer,
		[]ScanPoint{{Seq: 0, X: 1}},
		[]WeldSample{{Seq: 0, Voltage: floatPtr(21)}},
	))

	points, err := db.LayerWaypoints(layer.ID)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Nil(t, points[0].ScanValue)

	samples, err := db.LayerSamples(layer.ID)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.NotNil(t, samples[0].Voltage)
	assert.Equal(t, 21.0, *samples[0].Voltage)
	assert.Nil(t, samples[0].Current)
}

func TestGroupSamples(t *testing.T) {
	db := setupTestDB(t)
	g, err := db.ReserveGroup("grouped", testTime)
	require.NoError(t, err)

	l2 := &Layer{GroupID: g.ID, LayerNumber: 2}
	l1 := &Layer{GroupID: g.ID, LayerNumber: 1}
	empty := &Layer{GroupID: g.ID, LayerNumber: 3}
	require.NoError(t, db.IngestLayer(l2, nil, []WeldSample{{Seq: 0, Current: floatPtr(200)}}))
	require.NoError(t, db.IngestLayer(l1, nil, []WeldSample{
		{Seq: 1, Current: floatPtr(120)},
		{Seq: 0, Current: floatPtr(100)},
	}))
	require.NoError(t, db.IngestLayer(empty, nil, nil))

	got, err := db.GroupSamples(g.ID)
	require.NoError(t, err)
	require.Len(t, got, 2, "layers without samples are omitted")

	assert.Equal(t, l1.ID, got[0].LayerID)
	assert.Equal(t, 1, got[0].LayerNumber)
	require.Len(t, got[0].Samples, 2)
	assert.Equal(t, 0, got[0].Samples[0].Seq)
	assert.Equal(t, 100.0, *got[0].Samples[0].Current)

	assert.Equal(t, l2.ID, got[1].LayerID)
	assert.Len(t, got[1].Samples, 1)

	none, err := db.GroupSamples("missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
