package vectorstore

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantStore is a remote Engine backed by a Qdrant server over gRPC.
// Qdrant requires point ids to be UUIDs, so caller-supplied ids must be
// UUID-shaped; the store's generated ids always are.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	createdAt   string
}

// OpenQdrant connects to a Qdrant server and opens or creates the named
// collection with the given vector dimension and cosine distance.
func OpenQdrant(ctx context.Context, host string, port int, collection string, dimension int) (*QdrantStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	s := &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}
	if err := s.openOrCreate(ctx, dimension); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) openOrCreate(ctx context.Context, dimension int) error {
	resp, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}
	if resp.GetResult().GetExists() {
		return nil
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant collection create: %w", err)
	}
	s.createdAt = time.Now().UTC().Format(time.RFC3339Nano)
	return nil
}

func (s *QdrantStore) Insert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error {
	points := make([]*pb.PointStruct, len(ids))
	for i, id := range ids {
		payload, err := toPayload(texts[i], metadatas[i])
		if err != nil {
			return err
		}
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vectors[i]}}},
			Payload: payload,
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, k int, filter Filter) (*QueryResult, error) {
	var qf *pb.Filter
	if len(filter) > 0 {
		var err error
		qf, err = toQdrantFilter(filter)
		if err != nil {
			return nil, err
		}
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(k),
		Filter:         qf,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	result := &QueryResult{}
	for _, pt := range resp.GetResult() {
		text, meta := fromPayload(pt.GetPayload())
		result.IDs = append(result.IDs, pt.GetId().GetUuid())
		result.Texts = append(result.Texts, text)
		result.Metadatas = append(result.Metadatas, meta)
		// Qdrant reports cosine similarity; convert to a distance so ordering
		// matches the engine contract (ascending, nearest first).
		result.Distances = append(result.Distances, 1-float64(pt.GetScore()))
	}
	return result, nil
}

func (s *QdrantStore) Get(ctx context.Context, ids []string) (*GetResult, error) {
	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
	}
	resp, err := s.points.Get(ctx, &pb.GetPoints{
		CollectionName: s.collection,
		Ids:            pointIDs,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant get: %w", err)
	}

	result := &GetResult{}
	for _, pt := range resp.GetResult() {
		text, meta := fromPayload(pt.GetPayload())
		result.IDs = append(result.IDs, pt.GetId().GetUuid())
		result.Texts = append(result.Texts, text)
		result.Metadatas = append(result.Metadatas, meta)
	}
	return result, nil
}

func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
	}
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: pointIDs},
			},
		},
		Wait: &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

func (s *QdrantStore) Update(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error {
	// Qdrant upserts unconditionally, so check existence first to keep the
	// update-never-creates contract.
	existing, err := s.Get(ctx, ids)
	if err != nil {
		return err
	}
	if len(existing.IDs) != len(ids) {
		found := make(map[string]bool, len(existing.IDs))
		for _, id := range existing.IDs {
			found[id] = true
		}
		for _, id := range ids {
			if !found[id] {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
		}
	}
	return s.Insert(ctx, ids, vectors, texts, metadatas)
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *QdrantStore) Meta() map[string]any {
	meta := map[string]any{"name": s.collection}
	if s.createdAt != "" {
		meta["created_at"] = s.createdAt
	}
	return meta
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

// payloadContentKey holds the document text inside the point payload;
// metadata keys are stored alongside it.
const payloadContentKey = "content"

func toPayload(text string, metadata map[string]any) (map[string]*pb.Value, error) {
	payload := map[string]*pb.Value{
		payloadContentKey: {Kind: &pb.Value_StringValue{StringValue: text}},
	}
	for k, v := range metadata {
		value, err := toQdrantValue(v)
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", k, err)
		}
		payload[k] = value
	}
	return payload, nil
}

func fromPayload(payload map[string]*pb.Value) (string, map[string]any) {
	text := ""
	meta := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == payloadContentKey {
			text = v.GetStringValue()
			continue
		}
		meta[k] = fromQdrantValue(v)
	}
	return text, meta
}

func toQdrantValue(v any) (*pb.Value, error) {
	switch val := v.(type) {
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: val}}, nil
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: val}}, nil
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(val)}}, nil
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: val}}, nil
	case float32:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: float64(val)}}, nil
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: val}}, nil
	case time.Time:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: val.Format(time.RFC3339Nano)}}, nil
	}
	return nil, fmt.Errorf("unsupported metadata type %T", v)
}

func fromQdrantValue(v *pb.Value) any {
	switch kind := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	}
	return nil
}

func toQdrantFilter(filter Filter) (*pb.Filter, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	var must []*pb.Condition
	for key, want := range filter {
		cond := &pb.FieldCondition{Key: key}
		switch val := want.(type) {
		case Range:
			cond.Range = &pb.Range{Gt: val.GT, Gte: val.GTE, Lt: val.LT, Lte: val.LTE}
		case string:
			cond.Match = &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: val}}
		case bool:
			cond.Match = &pb.Match{MatchValue: &pb.Match_Boolean{Boolean: val}}
		case int:
			cond.Match = &pb.Match{MatchValue: &pb.Match_Integer{Integer: int64(val)}}
		case int64:
			cond.Match = &pb.Match{MatchValue: &pb.Match_Integer{Integer: val}}
		case time.Time:
			cond.Match = &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: val.Format(time.RFC3339Nano)}}
		default:
			// Float equality has no exact qdrant match clause; express it as a
			// degenerate range.
			n, ok := toFloat(want)
			if !ok {
				return nil, fmt.Errorf("filter %q: unsupported value type %T", key, want)
			}
			cond.Range = &pb.Range{Gte: &n, Lte: &n}
		}
		must = append(must, &pb.Condition{ConditionOneOf: &pb.Condition_Field{Field: cond}})
	}
	return &pb.Filter{Must: must}, nil
}
