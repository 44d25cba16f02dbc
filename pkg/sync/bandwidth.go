package sync

import "github.com/aeonsync/core/pkg/operation"

type bandwidthBaseline struct {
	speedKbps float64
	latencyMs float64
}

var bandwidthBaselines = map[operation.EffectiveType]bandwidthBaseline{
	operation.EffectiveSlow2G: {speedKbps: 50, latencyMs: 2000},
	operation.Effective2G:     {speedKbps: 150, latencyMs: 1000},
	operation.Effective3G:     {speedKbps: 750, latencyMs: 400},
	operation.Effective4G:     {speedKbps: 5000, latencyMs: 50},
}

func reliabilityFor(t operation.EffectiveType) float64 {
	switch t {
	case operation.Effective4G:
		return 0.95
	case operation.Effective3G:
		return 0.85
	default:
		return 0.70
	}
}

// deriveBandwidth builds a BandwidthProfile from a baseline by effective
// connection type, with speedKbps/latencyMs overridden when downlink
// (Mbps) / rtt (ms) platform signals are available.
func deriveBandwidth(effectiveType operation.EffectiveType, downlinkMbps, rttMs float64, now int64) operation.BandwidthProfile {
	base, ok := bandwidthBaselines[effectiveType]
	if !ok {
		base = bandwidthBaselines[operation.Effective4G]
		effectiveType = operation.EffectiveUnknown
	}

	profile := operation.BandwidthProfile{
		SpeedKbps:     base.speedKbps,
		LatencyMs:     base.latencyMs,
		Reliability:   reliabilityFor(effectiveType),
		EffectiveType: effectiveType,
		Timestamp:     now,
	}
	if downlinkMbps > 0 {
		profile.SpeedKbps = downlinkMbps * 1024
	}
	if rttMs > 0 {
		profile.LatencyMs = rttMs
	}
	return profile
}

// adaptedBatchLimits applies the adaptive-batching thresholds.
func adaptedBatchLimits(speedKbps float64, defaultSize, defaultBytes int) (size, bytes int) {
	switch {
	case speedKbps < 512:
		size, bytes = defaultSize/4, defaultBytes/4
		if size < 10 {
			size = 10
		}
		if bytes < 512*1024 {
			bytes = 512 * 1024
		}
	case speedKbps < 1024:
		size, bytes = defaultSize/2, defaultBytes/2
		if size < 25 {
			size = 25
		}
		if bytes < 1024*1024 {
			bytes = 1024 * 1024
		}
	case speedKbps > 5000:
		size, bytes = defaultSize*2, defaultBytes*2
		if size > 500 {
			size = 500
		}
		if bytes > 50*1024*1024 {
			bytes = 50 * 1024 * 1024
		}
	default:
		size, bytes = defaultSize, defaultBytes
	}
	return size, bytes
}
