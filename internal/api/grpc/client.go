package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/schema"
	"github.com/arkilian/tableschema/internal/wire"
)

// Client calls a remote schema service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient creates a client for the service at target. Extra dial options
// are applied after the defaults.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(codec{})),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, errors.NewTransportError(errors.CodeUnexpected, "failed to create client", err).
			WithDetails(map[string]interface{}{"target": target})
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetSchema fetches one version of a table schema; version 0 is the latest.
func (c *Client) GetSchema(ctx context.Context, table string, version uint32) (*schema.Schema, error) {
	resp := new(wire.GetSchemaResponse)
	if err := c.invoke(ctx, methodGetSchema, &wire.GetSchemaRequest{Table: table, Version: version}, resp); err != nil {
		return nil, err
	}
	return schema.FromWire(resp.Schema)
}

// RegisterSchema stores s under table and returns the version it maps to.
func (c *Client) RegisterSchema(ctx context.Context, table string, s *schema.Schema) (uint32, bool, error) {
	resp := new(wire.RegisterSchemaResponse)
	if err := c.invoke(ctx, methodRegisterSchema, &wire.RegisterSchemaRequest{Table: table, Schema: s.ToWire()}, resp); err != nil {
		return 0, false, err
	}
	return resp.Version, resp.Created, nil
}

// CheckWrite checks writer against the latest schema of table.
func (c *Client) CheckWrite(ctx context.Context, table string, writer *schema.Schema) (uint32, *schema.IndexInWriterSchema, error) {
	resp := new(wire.CheckWriteResponse)
	if err := c.invoke(ctx, methodCheckWrite, &wire.CheckWriteRequest{Table: table, Schema: writer.ToWire()}, resp); err != nil {
		return 0, nil, err
	}
	return resp.Version, schema.IndexInWriterSchemaFromInt32s(resp.IndexInWriter), nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp wire.Message) error {
	if _, ok := metadata.FromOutgoingContext(ctx); !ok {
		ctx = metadata.AppendToOutgoingContext(ctx, requestIDKey, uuid.New().String())
	}
	var trailer metadata.MD
	if err := c.conn.Invoke(ctx, method, req, resp, grpc.Trailer(&trailer)); err != nil {
		return fromStatus(err, trailer)
	}
	return nil
}

// fromStatus rebuilds the structured error sent by the server. Errors without
// trailers are reported as transport failures.
func fromStatus(err error, trailer metadata.MD) error {
	st, ok := status.FromError(err)
	if !ok {
		return errors.NewTransportError(errors.CodeUnexpected, "call failed", err)
	}
	category := trailer.Get(trailerErrorCategory)
	code := trailer.Get(trailerErrorCode)
	if len(category) == 0 || len(code) == 0 {
		return errors.NewTransportError(errors.CodeUnexpected, "call failed", err).
			WithDetails(map[string]interface{}{"status": st.Code().String()})
	}
	return errors.New(errors.ErrorCategory(category[0]), code[0], st.Message())
}
