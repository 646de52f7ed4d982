package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/iceymoss/go-news/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportStore 把每次运行的 pipeline.Report 归档到 mongo
type ReportStore struct {
	coll *mongo.Collection
}

// NewReportStore client 为 nil 时返回 nil，调用方据此跳过归档
func NewReportStore(client *mongo.Client, database, collection string) *ReportStore {
	if client == nil {
		return nil
	}
	return &ReportStore{coll: client.Database(database).Collection(collection)}
}

// Save 写入一条报告
func (s *ReportStore) Save(ctx context.Context, rep *pipeline.Report) error {
	if s == nil || rep == nil {
		return nil
	}
	if _, err := s.coll.InsertOne(ctx, rep); err != nil {
		return fmt.Errorf("archive report %s: %w", rep.RunID, err)
	}
	return nil
}

// Latest 某个任务最近一次的报告，task 为空时取全部任务中最新的
func (s *ReportStore) Latest(ctx context.Context, task string) (*pipeline.Report, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	filter := bson.M{}
	if task != "" {
		filter["task"] = task
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})

	var rep pipeline.Report
	err := s.coll.FindOne(ctx, filter, opts).Decode(&rep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
