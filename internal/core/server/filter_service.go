package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solatis/fieldfilter/internal/core/api"
	"github.com/solatis/fieldfilter/internal/types"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

/*
 * fieldfilter.v1.FilterService
 *
 * One unary method, Query. Request and response are google.protobuf.Struct
 * carrying the same JSON documents as the HTTP API:
 *
 *   request:  {dataset?, records?, fields?, conditions, sort?}
 *   response: {records, total, matched, dropped, version?, cached, warnings?}
 *
 * Struct keeps the condition value union (string, number, bool, list, range
 * object) lossless without a generated message per value shape. Numbers
 * travel as doubles, which is what the evaluator compares anyway.
 */

const (
	// FilterServiceName is the fully-qualified gRPC service name.
	FilterServiceName = "fieldfilter.v1.FilterService"

	// QueryMethod is the full method path of FilterService.Query.
	QueryMethod = "/" + FilterServiceName + "/Query"
)

// FilterServiceServer is the server API for FilterService.
type FilterServiceServer interface {
	Query(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FilterServiceDesc describes FilterService for grpc.Server.RegisterService.
var FilterServiceDesc = grpc.ServiceDesc{
	ServiceName: FilterServiceName,
	HandlerType: (*FilterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: queryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fieldfilter/v1/filter.proto",
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FilterServiceServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QueryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FilterServiceServer).Query(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// FilterServiceClient is the client API for FilterService.
type FilterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFilterServiceClient wraps a client connection.
func NewFilterServiceClient(cc grpc.ClientConnInterface) *FilterServiceClient {
	return &FilterServiceClient{cc: cc}
}

// Query calls FilterService.Query.
func (c *FilterServiceClient) Query(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, QueryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// filterService adapts api.QueryService to FilterServiceServer.
type filterService struct {
	service *api.QueryService
}

func (f *filterService) Query(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := DecodeQueryRequest(in)
	if err != nil {
		return nil, api.GRPCError(err)
	}
	resp, err := f.service.Query(ctx, req)
	if err != nil {
		return nil, api.GRPCError(err)
	}
	out, err := EncodeStruct(resp)
	if err != nil {
		return nil, api.GRPCError(fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}

// DecodeQueryRequest converts a Struct payload into a QueryRequest.
func DecodeQueryRequest(in *structpb.Struct) (api.QueryRequest, error) {
	var req api.QueryRequest
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return req, fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
	}
	return req, nil
}

// EncodeStruct converts any JSON-encodable value into a Struct.
func EncodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// DecodeStruct converts a Struct into out via its JSON form.
func DecodeStruct(in *structpb.Struct, out any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
