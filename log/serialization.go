package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/reglet-dev/portbridge/domain/entities"
)

// wireAttr encodes one attribute for the host. Values travel as text tagged
// with their kind, so the host can log them without knowing Go types.
func wireAttr(key string, v slog.Value) entities.LogAttrWire {
	typ, val := encodeValue(v.Resolve())
	return entities.LogAttrWire{Key: key, Type: typ, Value: val}
}

func encodeValue(v slog.Value) (typ, val string) {
	switch v.Kind() {
	case slog.KindString:
		return "string", v.String()
	case slog.KindInt64:
		return "int64", strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return "uint64", strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return "bool", strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		return "float64", strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		return "time", v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return "duration", v.Duration().String()
	case slog.KindGroup:
		// groups reaching here were passed as values; appendAttr flattens the rest
		return "group", v.String()
	default:
		return encodeAny(v.Any())
	}
}

func encodeAny(x any) (typ, val string) {
	switch x := x.(type) {
	case nil:
		return "any", "<nil>"
	case error:
		return "error", x.Error()
	}
	if data, err := json.Marshal(x); err == nil {
		return "json", string(data)
	}
	return "any", fmt.Sprint(x)
}
