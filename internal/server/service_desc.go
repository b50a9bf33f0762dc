// gRPC service description for DocumentDiffService
package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "docdiff.v1.DocumentDiffService"

// Method names
const (
	MethodDiff         = "Diff"
	MethodDiffVersions = "DiffVersions"
	MethodPutSnapshot  = "PutSnapshot"
	MethodGetSnapshot  = "GetSnapshot"
	MethodHistory      = "History"
)

// FullMethod returns the gRPC path of a method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// DocumentDiffServer is the server API. Requests and responses are
// google.protobuf.Struct messages, so no generated code is involved.
type DocumentDiffServer interface {
	Diff(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DiffVersions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDocumentDiffServer registers srv on s
func RegisterDocumentDiffServer(s grpc.ServiceRegistrar, srv DocumentDiffServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes DocumentDiffService for grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentDiffServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodDiff, Handler: unaryHandler(MethodDiff, DocumentDiffServer.Diff)},
		{MethodName: MethodDiffVersions, Handler: unaryHandler(MethodDiffVersions, DocumentDiffServer.DiffVersions)},
		{MethodName: MethodPutSnapshot, Handler: unaryHandler(MethodPutSnapshot, DocumentDiffServer.PutSnapshot)},
		{MethodName: MethodGetSnapshot, Handler: unaryHandler(MethodGetSnapshot, DocumentDiffServer.GetSnapshot)},
		{MethodName: MethodHistory, Handler: unaryHandler(MethodHistory, DocumentDiffServer.History)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docdiff/v1/docdiff.proto",
}

type unaryMethod func(DocumentDiffServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DocumentDiffServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DocumentDiffServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
