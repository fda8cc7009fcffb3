package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names of the control API. Messages are protobuf
// well-known types, so no generated message code is required.
const (
	ServiceName              = "marketcache.control.v1.SeedControl"
	SeedBatchFullMethod      = "/" + ServiceName + "/SeedBatch"
	GetStatusFullMethod      = "/" + ServiceName + "/GetStatus"
	UpdateUniverseFullMethod = "/" + ServiceName + "/UpdateUniverse"
)

// -----------------------------------------------------------------------------

// SeedControlServer is the server API for the SeedControl service.
type SeedControlServer interface {
	SeedBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UpdateUniverse(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterSeedControlServer(s grpc.ServiceRegistrar, srv SeedControlServer) {
	s.RegisterService(&SeedControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func _SeedControl_SeedBatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeedControlServer).SeedBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SeedBatchFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SeedControlServer).SeedBatch(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SeedControl_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeedControlServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStatusFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SeedControlServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _SeedControl_UpdateUniverse_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeedControlServer).UpdateUniverse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UpdateUniverseFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SeedControlServer).UpdateUniverse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SeedControl_ServiceDesc is the grpc.ServiceDesc for the SeedControl service.
var SeedControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SeedControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SeedBatch", Handler: _SeedControl_SeedBatch_Handler},
		{MethodName: "GetStatus", Handler: _SeedControl_GetStatus_Handler},
		{MethodName: "UpdateUniverse", Handler: _SeedControl_UpdateUniverse_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketcache/control/v1/control.proto",
}

// -----------------------------------------------------------------------------

// SeedControlClient is the client API for the SeedControl service.
type SeedControlClient interface {
	SeedBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateUniverse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type seedControlClient struct {
	cc grpc.ClientConnInterface
}

func NewSeedControlClient(cc grpc.ClientConnInterface) SeedControlClient {
	return &seedControlClient{cc}
}

func (c *seedControlClient) SeedBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SeedBatchFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *seedControlClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *seedControlClient) UpdateUniverse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UpdateUniverseFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
