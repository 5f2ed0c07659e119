package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The relay service carries opaque broadcast frames, so it is described
// with well-known protobuf types and needs no generated code.
const (
	relayServiceName     = "livechat.relay.v1.Relay"
	relayPingMethod      = "/" + relayServiceName + "/Ping"
	relayPublishMethod   = "/" + relayServiceName + "/Publish"
	relaySubscribeMethod = "/" + relayServiceName + "/Subscribe"
)

// RelayServer is the server side of the relay service.
type RelayServer interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Publish(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Subscribe(*emptypb.Empty, RelaySubscribeStream) error
}

// RelaySubscribeStream is the server stream of Subscribe.
type RelaySubscribeStream interface {
	Send(*wrapperspb.BytesValue) error
	grpc.ServerStream
}

type relaySubscribeStream struct {
	grpc.ServerStream
}

func (s *relaySubscribeStream) Send(m *wrapperspb.BytesValue) error {
	return s.ServerStream.SendMsg(m)
}

// RelayServiceDesc describes the relay service to grpc.
var RelayServiceDesc = grpc.ServiceDesc{
	ServiceName: relayServiceName,
	HandlerType: (*RelayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: relayPingHandler},
		{MethodName: "Publish", Handler: relayPublishHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: relaySubscribeHandler, ServerStreams: true},
	},
	Metadata: "livechat/relay/v1/relay.proto",
}

// RegisterRelayServer registers srv on s.
func RegisterRelayServer(s grpc.ServiceRegistrar, srv RelayServer) {
	s.RegisterService(&RelayServiceDesc, srv)
}

func relayPingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelayServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: relayPingMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelayServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func relayPublishHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelayServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: relayPublishMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelayServer).Publish(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func relaySubscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(RelayServer).Subscribe(in, &relaySubscribeStream{stream})
}

// RelayClient is the client side of the relay service.
type RelayClient struct {
	cc grpc.ClientConnInterface
}

// NewRelayClient wraps cc.
func NewRelayClient(cc grpc.ClientConnInterface) *RelayClient {
	return &RelayClient{cc: cc}
}

// Dial connects to the relay listening on socketPath.
func Dial(socketPath string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	return conn, nil
}

// Ping checks that the relay is serving.
func (c *RelayClient) Ping(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, relayPingMethod, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

// Publish hands one encoded frame to the relay.
func (c *RelayClient) Publish(ctx context.Context, frame []byte, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, relayPublishMethod, wrapperspb.Bytes(frame), new(emptypb.Empty), opts...)
}

// RelayFrames is a live Subscribe stream.
type RelayFrames struct {
	stream grpc.ClientStream
}

// Recv blocks for the next frame.
func (f *RelayFrames) Recv() ([]byte, error) {
	m := new(wrapperspb.BytesValue)
	if err := f.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m.GetValue(), nil
}

// Subscribe opens a stream of every frame published after the call. The
// stream ends when ctx is cancelled.
func (c *RelayClient) Subscribe(ctx context.Context, opts ...grpc.CallOption) (*RelayFrames, error) {
	stream, err := c.cc.NewStream(ctx, &RelayServiceDesc.Streams[0], relaySubscribeMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &RelayFrames{stream: stream}, nil
}
