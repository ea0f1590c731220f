package provider

import (
	"errors"
	"testing"

	"github.com/JonathanDunkleberger/Kimi/internal/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatScope(t *testing.T) {
	tests := []struct {
		stat       string
		wantMetric string
		wantMaps   []int
		wantErr    bool
	}{
		{stat: "kills_match", wantMetric: "kills", wantMaps: nil},
		{stat: "kills_m1", wantMetric: "kills", wantMaps: []int{1}},
		{stat: "kills_m1m2", wantMetric: "kills", wantMaps: []int{1, 2}},
		{stat: "deaths_m3", wantMetric: "deaths", wantMaps: []int{3}},
		{stat: "first_bloods_match", wantMetric: "first_bloods", wantMaps: nil},
		{stat: "kills", wantErr: true},
		{stat: "kills_m6", wantErr: true},
		{stat: "Kills_match", wantErr: true},
		{stat: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.stat, func(t *testing.T) {
			metric, maps, err := ParseStatScope(tc.stat)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantMetric, metric)
			assert.Equal(t, tc.wantMaps, maps)
		})
	}
}

func testDetail() *matchDetail {
	var d matchDetail
	for i := 0; i < 3; i++ {
		stats := gamePlayerStats{Kills: float64(5 + i), Deaths: 2}
		stats.Player.ID = 42
		d.Games = append(d.Games, gameDetail{
			Position: i + 1,
			Finished: i < 2, // map 3 never played out
			Players:  []gamePlayerStats{stats},
		})
	}
	return &d
}

func TestSumMetric(t *testing.T) {
	detail := testDetail()

	t.Run("whole match sums finished maps only", func(t *testing.T) {
		total, err := sumMetric(detail, "kills", nil, 42)
		require.NoError(t, err)
		assert.Equal(t, 11.0, total)
	})

	t.Run("single map", func(t *testing.T) {
		total, err := sumMetric(detail, "kills", []int{2}, 42)
		require.NoError(t, err)
		assert.Equal(t, 6.0, total)
	})

	t.Run("two map scope", func(t *testing.T) {
		total, err := sumMetric(detail, "kills", []int{1, 2}, 42)
		require.NoError(t, err)
		assert.Equal(t, 11.0, total)
	})

	t.Run("deaths metric", func(t *testing.T) {
		total, err := sumMetric(detail, "deaths", []int{1}, 42)
		require.NoError(t, err)
		assert.Equal(t, 2.0, total)
	})

	t.Run("scoped map never finished", func(t *testing.T) {
		_, err := sumMetric(detail, "kills", []int{3}, 42)
		assert.True(t, errors.Is(err, settlement.ErrStatUnavailable))
	})

	t.Run("player absent", func(t *testing.T) {
		_, err := sumMetric(detail, "kills", nil, 99)
		assert.True(t, errors.Is(err, settlement.ErrStatUnavailable))
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, err := sumMetric(detail, "wards", []int{1}, 42)
		assert.True(t, errors.Is(err, settlement.ErrStatUnavailable))
	})
}
