package directory

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/athena/internal/models"
)

// NormalizeID coerces an identifier to the canonical string used for every id
// comparison in this package. Endpoints disagree on whether ids are numbers or strings.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case models.ID:
		return strings.TrimSpace(string(id))
	case json.Number:
		return NormalizeID(id.String())
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float64:
		if id == math.Trunc(id) && math.Abs(id) < 1<<53 {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(id.String())
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}

// idSet builds a membership set of normalized ids.
func idSet[T any](ids []T) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[NormalizeID(id)] = struct{}{}
	}

	return set
}
