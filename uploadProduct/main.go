package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/pkg/app"
	"gitlab.connectwisedev.com/catalog-service/pkg/catalog"
	"gitlab.connectwisedev.com/catalog-service/pkg/config"
	"gitlab.connectwisedev.com/catalog-service/pkg/importer"
)

// S3EventWrapper is a custom struct to handle either S3 events or direct CSV payload
type S3EventWrapper struct {
	Records []events.S3EventRecord `json:"Records,omitempty"`
	CSVData string                 `json:"csv_data,omitempty"` // For local testing
}

// ImportResponse is returned to the invoker.
type ImportResponse struct {
	Created int                     `json:"created"`
	Failed  []catalog.ImportFailure `json:"failed"`
}

type uploadHandler struct {
	service *catalog.Service
	objects importer.ObjectGetter
	logger  *zap.Logger
	local   bool
}

func (h *uploadHandler) handle(ctx context.Context, event S3EventWrapper) (ImportResponse, error) {
	var contents [][]byte

	switch {
	case len(event.Records) > 0:
		for _, record := range event.Records {
			bucket, key := record.S3.Bucket.Name, record.S3.Object.Key
			h.logger.Info("processing S3 object", zap.String("bucket", bucket), zap.String("key", key))

			body, err := h.fetch(ctx, bucket, key)
			if err != nil {
				return ImportResponse{}, err
			}
			contents = append(contents, body)
		}
	case event.CSVData != "":
		h.logger.Info("processing direct CSV payload")
		contents = append(contents, []byte(event.CSVData))
	default:
		return ImportResponse{}, fmt.Errorf("no S3 event record or direct CSV data found in the payload")
	}

	resp := ImportResponse{Failed: []catalog.ImportFailure{}}
	for _, body := range contents {
		rows, failures, err := importer.Parse(bytes.NewReader(body))
		if err != nil {
			return ImportResponse{}, fmt.Errorf("failed to parse CSV: %w", err)
		}
		res := h.service.ImportProducts(ctx, rows)
		resp.Created += len(res.Created)
		failures = append(failures, res.Failed...)
		sort.SliceStable(failures, func(i, j int) bool { return failures[i].Line < failures[j].Line })
		resp.Failed = append(resp.Failed, failures...)
	}

	for _, f := range resp.Failed {
		h.logger.Warn("skipped CSV row", zap.Int("line", f.Line), zap.String("reason", f.Reason))
	}
	h.logger.Info("import finished", zap.Int("created", resp.Created), zap.Int("failed", len(resp.Failed)))
	return resp, nil
}

// fetch reads the object from S3. Locally, S3 events are simulated with products.csv.
func (h *uploadHandler) fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	if h.local {
		body, err := os.ReadFile("products.csv")
		if err != nil {
			return nil, fmt.Errorf("failed to read local products.csv for S3 simulation: %w", err)
		}
		return body, nil
	}
	return importer.FetchObject(ctx, h.objects, bucket, key)
}

func main() {
	config.LoadEnv() // Load environment variables first
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close(ctx)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	h := &uploadHandler{
		service: container.Service,
		objects: s3.NewFromConfig(awsCfg),
		logger:  container.Logger.Named("import"),
		local:   container.Config.AppEnv == "local",
	}
	lambda.Start(h.handle)
}
