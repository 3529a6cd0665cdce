// Package qdrant is the Qdrant-backed vector store. Points carry the
// document metadata as payload and are filtered by collection_id on every
// search, so one Qdrant collection serves every NovaNote collection.
package qdrant

import (
	"context"
	"fmt"

	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/rag"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	fieldContent      = "content"
	fieldCollectionID = "collection_id"
	fieldItemID       = "item_id"
	fieldItemType     = "item_type"
	fieldTitle        = "title"
	fieldSourceURL    = "source_url"
	fieldChunkIndex   = "chunk_index"
)

var _ rag.VectorStore = (*Store)(nil)

// Store implements rag.VectorStore on one Qdrant collection.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewStore dials the Qdrant gRPC endpoint at addr (host:port).
func NewStore(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection with cosine distance and a keyword
// index on collection_id and item_id if it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context, dimensions int) error {
	exists, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: s.collection})
	if err != nil {
		return fmt.Errorf("qdrant collection exists: %w", err)
	}
	if exists.GetResult().GetExists() {
		return nil
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{
			Size:     uint64(dimensions),
			Distance: pb.Distance_Cosine,
		}}},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}

	for _, field := range []string{fieldCollectionID, fieldItemID} {
		_, err := s.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
			Wait:           boolPtr(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant index %s: %w", field, err)
		}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, docs []domain.EmbeddedDocument) error {
	if len(docs) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, len(docs))
	for i, d := range docs {
		points[i] = toPoint(d)
	}
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           boolPtr(true),
	})
	return err
}

func (s *Store) Search(ctx context.Context, collectionID string, vector []float32, k int) ([]domain.SearchResult, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(k),
		Filter:         matchKeyword(fieldCollectionID, collectionID),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		results[i] = fromPayload(pt.GetPayload(), pt.GetScore())
	}
	return results, nil
}

func (s *Store) DeleteByItem(ctx context.Context, itemID string) error {
	return s.deleteWhere(ctx, fieldItemID, itemID)
}

func (s *Store) DeleteByCollection(ctx context.Context, collectionID string) error {
	return s.deleteWhere(ctx, fieldCollectionID, collectionID)
}

func (s *Store) deleteWhere(ctx context.Context, field, value string) error {
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{Filter: matchKeyword(field, value)},
		},
		Wait: boolPtr(true),
	})
	return err
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func toPoint(d domain.EmbeddedDocument) *pb.PointStruct {
	m := d.Metadata
	payload := map[string]*pb.Value{
		fieldContent:      stringValue(d.Content),
		fieldCollectionID: stringValue(m.CollectionID),
		fieldItemID:       stringValue(m.ItemID),
		fieldItemType:     stringValue(string(m.ItemType)),
		fieldTitle:        stringValue(m.Title),
		fieldChunkIndex:   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(m.ChunkIndex)}},
	}
	if m.SourceURL != nil {
		payload[fieldSourceURL] = stringValue(*m.SourceURL)
	}
	return &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: d.ID}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: d.Vector}}},
		Payload: payload,
	}
}

func fromPayload(payload map[string]*pb.Value, score float32) domain.SearchResult {
	res := domain.SearchResult{
		Content: payload[fieldContent].GetStringValue(),
		Score:   score,
		Metadata: domain.DocumentMetadata{
			CollectionID: payload[fieldCollectionID].GetStringValue(),
			ItemID:       payload[fieldItemID].GetStringValue(),
			ItemType:     domain.ItemType(payload[fieldItemType].GetStringValue()),
			Title:        payload[fieldTitle].GetStringValue(),
			ChunkIndex:   int(payload[fieldChunkIndex].GetIntegerValue()),
		},
	}
	if v, ok := payload[fieldSourceURL]; ok && v.GetStringValue() != "" {
		url := v.GetStringValue()
		res.Metadata.SourceURL = &url
	}
	return res
}

func matchKeyword(key, value string) *pb.Filter {
	return &pb.Filter{Must: []*pb.Condition{{
		ConditionOneOf: &pb.Condition_Field{Field: &pb.FieldCondition{
			Key:   key,
			Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
		}},
	}}}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func boolPtr(b bool) *bool {
	return &b
}
