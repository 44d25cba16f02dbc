package conflict

import (
	"bytes"
	"math"
	"sort"

	"github.com/aeonsync/core/pkg/operation"
)

// detect classifies the divergence between a local and remote operation
// sharing a sessionId and returns the conflict type plus whether a
// conflict exists at all.
func detect(local, remote *operation.Operation) (operation.ConflictType, bool) {
	if local.SessionID != remote.SessionID {
		return "", false
	}
	localDelete := local.Type == operation.TypeDelete
	remoteDelete := remote.Type == operation.TypeDelete

	switch {
	case localDelete && remoteDelete:
		return "", false
	case localDelete && !remoteDelete:
		return operation.ConflictDeleteUpdate, true
	case !localDelete && remoteDelete:
		return operation.ConflictUpdateDelete, true
	case local.Type == operation.TypeUpdate && remote.Type == operation.TypeUpdate:
		return operation.ConflictUpdateUpdate, true
	default:
		return operation.ConflictConcurrent, true
	}
}

// severity scores a detected conflict.
func severity(t operation.ConflictType, local, remote map[string]any) (operation.Severity, float64) {
	switch t {
	case operation.ConflictDeleteUpdate, operation.ConflictUpdateDelete:
		return operation.SeverityHigh, 0
	case operation.ConflictUpdateUpdate:
		score := similarity(local, remote)
		switch {
		case score < 30:
			return operation.SeverityHigh, score
		case score < 60:
			return operation.SeverityMedium, score
		default:
			return operation.SeverityLow, score
		}
	default:
		return operation.SeverityLow, 0
	}
}

// similarity computes round(common_chars / max(len_a, len_b) * 100) over
// the canonical JSON serializations of the two payloads, where
// common_chars is the size of the character-frequency multiset
// intersection (not a longest-common-subsequence).
func similarity(local, remote map[string]any) float64 {
	a, err := operation.SimilarityInput(local)
	if err != nil {
		return 0
	}
	b, err := operation.SimilarityInput(remote)
	if err != nil {
		return 0
	}
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	common := commonChars(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	return math.Round(float64(common) / float64(maxLen) * 100)
}

func commonChars(a, b []byte) int {
	freq := make(map[byte]int, len(a))
	for _, c := range a {
		freq[c]++
	}
	common := 0
	for _, c := range b {
		if freq[c] > 0 {
			freq[c]--
			common++
		}
	}
	return common
}

// conflictingKeys returns the set of keys present in either payload
// whose canonical JSON values differ.
func conflictingKeys(local, remote map[string]any) []string {
	seen := make(map[string]struct{})
	for k := range local {
		seen[k] = struct{}{}
	}
	for k := range remote {
		seen[k] = struct{}{}
	}

	var keys []string
	for k := range seen {
		lv, lok := local[k]
		rv, rok := remote[k]
		if lok != rok {
			keys = append(keys, k)
			continue
		}
		if !lok {
			continue
		}
		lj, _ := operation.MarshalCanonical(lv)
		rj, _ := operation.MarshalCanonical(rv)
		if !bytes.Equal(lj, rj) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
