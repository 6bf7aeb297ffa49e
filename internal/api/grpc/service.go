package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/arkilian/tableschema/internal/wire"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tableschema.SchemaService"

const (
	methodGetSchema      = "/" + ServiceName + "/GetSchema"
	methodRegisterSchema = "/" + ServiceName + "/RegisterSchema"
	methodCheckWrite     = "/" + ServiceName + "/CheckWrite"
)

// SchemaServiceServer is the server API of the schema service.
type SchemaServiceServer interface {
	GetSchema(context.Context, *wire.GetSchemaRequest) (*wire.GetSchemaResponse, error)
	RegisterSchema(context.Context, *wire.RegisterSchemaRequest) (*wire.RegisterSchemaResponse, error)
	CheckWrite(context.Context, *wire.CheckWriteRequest) (*wire.CheckWriteResponse, error)
}

// RegisterSchemaServiceServer registers srv with s.
func RegisterSchemaServiceServer(s grpc.ServiceRegistrar, srv SchemaServiceServer) {
	s.RegisterService(&schemaServiceDesc, srv)
}

var schemaServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchemaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSchema", Handler: getSchemaHandler},
		{MethodName: "RegisterSchema", Handler: registerSchemaHandler},
		{MethodName: "CheckWrite", Handler: checkWriteHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tableschema.proto",
}

func getSchemaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.GetSchemaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchemaServiceServer).GetSchema(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetSchema}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchemaServiceServer).GetSchema(ctx, req.(*wire.GetSchemaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func registerSchemaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.RegisterSchemaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchemaServiceServer).RegisterSchema(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRegisterSchema}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchemaServiceServer).RegisterSchema(ctx, req.(*wire.RegisterSchemaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkWriteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.CheckWriteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchemaServiceServer).CheckWrite(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCheckWrite}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchemaServiceServer).CheckWrite(ctx, req.(*wire.CheckWriteRequest))
	}
	return interceptor(ctx, in, info, handler)
}
