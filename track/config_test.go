package track

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CroppedRegionsStrategy = "sometimes"
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "CroppedRegionsStrategy")
	require.Contains(t, err.Error(), "sometimes")

	cfg = DefaultConfig()
	cfg.BackgroundCalc = "median"
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "BackgroundCalc")

	cfg = DefaultConfig()
	cfg.EdgePixels = -1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DilationPixels = -2
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ThresholdPercentile = 0
	require.Error(t, cfg.Validate())
	cfg.ThresholdPercentile = 101
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MinThreshold = 60
	cfg.MaxThreshold = 50
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RemoveTrackAfterFrames = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxTracks = -1
	require.Error(t, cfg.Validate())
}

func TestExtractorRefusesInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BackgroundCalc = "guess"
	_, err := NewTrackExtractor(nil, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "track extractor config")
}
