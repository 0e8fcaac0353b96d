package docstore

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store clock when the document is written.
var ServerTimestamp = serverTimestamp{}

// encode turns a field set into a protobuf Struct.
func encode(fields map[string]any, now time.Time) ([]byte, error) {
	normalized := make(map[string]any, len(fields))
	for name, value := range fields {
		normalized[name] = normalize(value, now)
	}
	s, err := structpb.NewStruct(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return proto.Marshal(s)
}

func decode(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return s.AsMap(), nil
}

func normalize(value any, now time.Time) any {
	switch v := value.(type) {
	case serverTimestamp:
		return float64(now.UnixMicro())
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return float64(v.UnixMicro())
	case []string:
		return lo.Map(v, func(s string, _ int) any { return s })
	case [2]string:
		return []any{v[0], v[1]}
	}
	return value
}
