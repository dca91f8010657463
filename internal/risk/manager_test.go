package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelsOf(pairs ...interface{}) *domain.PriceLevels {
	levels := domain.NewPriceLevels()
	for i := 0; i < len(pairs); i += 2 {
		levels.Set(pairs[i].(float64), pairs[i+1].(domain.LevelKind))
	}
	return levels
}

func TestStopLossAndTakeProfit(t *testing.T) {
	levels := levelsOf(110.0, domain.LevelResistance, 100.0, domain.LevelSupport)

	stop := StopLoss(levels, 2)
	// 110's lower neighbour is support at 100, so its stop tightens to 98.
	assert.Equal(t, domain.PriceMap{100: 98, 110: 98}, stop)

	target := TakeProfit(levels, 2)
	// 100's upper neighbour is resistance at 110, so its target loosens to 112.
	assert.Equal(t, domain.PriceMap{100: 112, 110: 112}, target)
}

func TestStopLoss_NoAdjustmentWithoutSupport(t *testing.T) {
	levels := levelsOf(100.0, domain.LevelDynamic, 110.0, domain.LevelFib50, 120.0, domain.LevelSupport)

	assert.Equal(t, domain.PriceMap{100: 99, 110: 109, 120: 119}, StopLoss(levels, 1))
	assert.Equal(t, domain.PriceMap{100: 101, 110: 111, 120: 121}, TakeProfit(levels, 1))
}

func TestRiskReward(t *testing.T) {
	tests := []struct {
		name        string
		levels      *domain.PriceLevels
		atr         float64
		want        domain.RiskReward
		expectedErr error
	}{
		{
			name: "ratio above one",
			levels: levelsOf(
				90.0, domain.LevelVolumeSupport,
				100.0, domain.LevelSupport,
				110.0, domain.LevelResistance,
				150.0, domain.LevelDynamic,
			),
			atr: 2,
			// risk = 100 - (90 - 2), reward = 150 - 110
			want: domain.RiskReward{Risk: 12, Reward: 40, Ratio: 40.0 / 12},
		},
		{
			name: "ratio clamped to one",
			levels: levelsOf(
				90.0, domain.LevelDynamic,
				100.0, domain.LevelSupport,
				110.0, domain.LevelResistance,
				111.0, domain.LevelFib618,
			),
			atr:  2,
			want: domain.RiskReward{Risk: 12, Reward: 1, Ratio: 1},
		},
		{
			name:        "support is the lowest level",
			levels:      levelsOf(100.0, domain.LevelSupport, 110.0, domain.LevelResistance),
			atr:         2,
			expectedErr: ports.ErrInsufficientLevels,
		},
		{
			name:        "resistance is the highest level",
			levels:      levelsOf(90.0, domain.LevelDynamic, 100.0, domain.LevelSupport, 110.0, domain.LevelResistance),
			atr:         2,
			expectedErr: ports.ErrInsufficientLevels,
		},
		{
			name:        "no support",
			levels:      levelsOf(90.0, domain.LevelDynamic, 110.0, domain.LevelResistance, 120.0, domain.LevelDynamic),
			atr:         2,
			expectedErr: ports.ErrInsufficientLevels,
		},
		{
			name:        "no resistance",
			levels:      levelsOf(90.0, domain.LevelDynamic, 100.0, domain.LevelSupport),
			atr:         2,
			expectedErr: ports.ErrInsufficientLevels,
		},
		{
			name: "zero risk",
			levels: levelsOf(
				99.0, domain.LevelDynamic,
				100.0, domain.LevelSupport,
				110.0, domain.LevelResistance,
				120.0, domain.LevelDynamic,
			),
			atr:         -1,
			expectedErr: ports.ErrDivisionByZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RiskReward(tt.levels, tt.atr)
			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "expected %v, got %v", tt.expectedErr, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Risk, got.Risk, 1e-9)
			assert.InDelta(t, tt.want.Reward, got.Reward, 1e-9)
			assert.InDelta(t, tt.want.Ratio, got.Ratio, 1e-9)
			assert.GreaterOrEqual(t, got.Ratio, 1.0)
		})
	}
}

func TestManager_Calculate(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]*domain.Kline, 4)
	for i := range klines {
		klines[i] = &domain.Kline{OpenTime: base.Add(time.Duration(i) * time.Hour), High: 102, Low: 100, Close: 101, Volume: 1}
	}
	levels := levelsOf(
		90.0, domain.LevelVolumeSupport,
		100.0, domain.LevelSupport,
		110.0, domain.LevelResistance,
		150.0, domain.LevelDynamic,
	)

	manager, err := NewManager(Config{ATRPeriod: 2})
	require.NoError(t, err)

	params, err := manager.Calculate(context.Background(), klines, levels)
	require.NoError(t, err)
	assert.Equal(t, 2.0, params.ATR)
	assert.Equal(t, 98.0, params.StopLoss[110])
	assert.Equal(t, 152.0, params.TakeProfit[150])
	assert.InDelta(t, 12.0, params.RiskReward.Risk, 1e-9)
}

func TestManager_CalculateErrors(t *testing.T) {
	manager, err := NewManager(Config{})
	require.NoError(t, err)

	short := []*domain.Kline{{High: 2, Low: 1, Close: 1.5}}
	_, err = manager.Calculate(context.Background(), short, levelsOf(1.0, domain.LevelSupport))
	assert.ErrorIs(t, err, ports.ErrInsufficientData)

	_, err = NewManager(Config{ATRPeriod: -3})
	assert.ErrorIs(t, err, ports.ErrInvalidConfiguration)
}

func TestManager_CalculateWithoutLevels(t *testing.T) {
	manager, err := NewManager(Config{ATRPeriod: 2})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]*domain.Kline, 4)
	for i := range klines {
		klines[i] = &domain.Kline{OpenTime: base.Add(time.Duration(i) * time.Hour), High: 102, Low: 100, Close: 101, Volume: 1}
	}

	_, err = manager.Calculate(context.Background(), klines, nil)
	assert.ErrorIs(t, err, ports.ErrInsufficientLevels)

	_, err = manager.Calculate(context.Background(), klines, domain.NewPriceLevels())
	assert.ErrorIs(t, err, ports.ErrInsufficientLevels)

	assert.Empty(t, StopLoss(nil, 2))
	assert.Empty(t, TakeProfit(nil, 2))
	_, err = RiskReward(nil, 2)
	assert.ErrorIs(t, err, ports.ErrInsufficientLevels)
}
