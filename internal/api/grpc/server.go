package grpc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/manifest"
	"github.com/arkilian/tableschema/internal/schema"
	"github.com/arkilian/tableschema/internal/wire"
)

// Trailer keys carrying the structured error of a failed call.
const (
	trailerErrorCategory = "x-error-category"
	trailerErrorCode     = "x-error-code"
	requestIDKey         = "x-request-id"
)

// SchemaServer implements SchemaServiceServer on top of a catalog.
type SchemaServer struct {
	catalog manifest.Catalog
}

// NewSchemaServer creates a schema server.
func NewSchemaServer(catalog manifest.Catalog) *SchemaServer {
	return &SchemaServer{catalog: catalog}
}

// NewServer returns a gRPC server with the schema service registered, the
// wire codec forced and request logging installed.
func NewServer(srv SchemaServiceServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(codec{}),
		grpc.ChainUnaryInterceptor(requestIDInterceptor),
	}, opts...)
	s := grpc.NewServer(opts...)
	RegisterSchemaServiceServer(s, srv)
	return s
}

// GetSchema returns one version of a table schema; version 0 is the latest.
func (s *SchemaServer) GetSchema(ctx context.Context, req *wire.GetSchemaRequest) (*wire.GetSchemaResponse, error) {
	if req.Table == "" {
		return nil, status.Error(codes.InvalidArgument, "table is required")
	}
	sch, err := s.catalog.GetSchema(ctx, req.Table, req.Version)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &wire.GetSchemaResponse{Schema: sch.ToWire()}, nil
}

// RegisterSchema validates and stores a table schema.
func (s *SchemaServer) RegisterSchema(ctx context.Context, req *wire.RegisterSchemaRequest) (*wire.RegisterSchemaResponse, error) {
	if req.Table == "" {
		return nil, status.Error(codes.InvalidArgument, "table is required")
	}
	sch, err := schema.FromWire(req.Schema)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	version, created, err := s.catalog.RegisterSchema(ctx, req.Table, sch)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &wire.RegisterSchemaResponse{Version: version, Created: created}, nil
}

// CheckWrite checks a writer schema against the latest table schema.
func (s *SchemaServer) CheckWrite(ctx context.Context, req *wire.CheckWriteRequest) (*wire.CheckWriteResponse, error) {
	if req.Table == "" {
		return nil, status.Error(codes.InvalidArgument, "table is required")
	}
	writer, err := schema.FromWire(req.Schema)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	version, index, err := s.catalog.CheckWrite(ctx, req.Table, writer)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &wire.CheckWriteResponse{Version: version, IndexInWriter: index.Int32s()}, nil
}

// toStatus converts err to a gRPC status and attaches its category and code
// as trailers so clients can rebuild the structured error.
func toStatus(ctx context.Context, err error) error {
	se, ok := errors.AsSchemaError(err)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	_ = grpc.SetTrailer(ctx, metadata.Pairs(
		trailerErrorCategory, string(se.Category),
		trailerErrorCode, se.Code,
	))
	msg := strings.TrimPrefix(se.Error(), fmt.Sprintf("[%s:%s] ", se.Category, se.Code))
	return status.Error(statusCode(se), msg)
}

func statusCode(se *errors.SchemaError) codes.Code {
	switch se.Category {
	case errors.ErrCategorySchema:
		return codes.InvalidArgument
	case errors.ErrCategoryCompat:
		return codes.FailedPrecondition
	case errors.ErrCategoryCatalog:
		switch se.Code {
		case errors.CodeTableNotFound, errors.CodeVersionNotFound:
			return codes.NotFound
		case errors.CodeCorruptSchema:
			return codes.DataLoss
		}
	}
	return codes.Internal
}

// requestIDInterceptor tags every call with a request id, echoed back in the
// response header, and logs its outcome.
func requestIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	requestID := extractRequestID(ctx)
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("grpc: %s request_id=%s failed after %v: %v", info.FullMethod, requestID, time.Since(start), err)
	} else {
		log.Printf("grpc: %s request_id=%s ok in %v", info.FullMethod, requestID, time.Since(start))
	}
	return resp, err
}

// extractRequestID extracts or generates a request ID from the gRPC context.
func extractRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDKey); len(ids) > 0 {
			return ids[0]
		}
	}
	return uuid.New().String()
}
