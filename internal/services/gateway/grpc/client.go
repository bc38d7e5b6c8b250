package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

// Client is the typed side of IrrigationControl used by the ctl commands.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, in interface{}, opts ...grpc.CallOption) (model.MoistureSnapshot, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return model.MoistureSnapshot{}, err
	}
	return decodeSnapshot(out)
}

func (c *Client) GetState(ctx context.Context, opts ...grpc.CallOption) (model.MoistureSnapshot, error) {
	return c.call(ctx, "GetState", &emptypb.Empty{}, opts...)
}

func (c *Client) TogglePump(ctx context.Context, opts ...grpc.CallOption) (model.MoistureSnapshot, error) {
	return c.call(ctx, "TogglePump", &emptypb.Empty{}, opts...)
}

func (c *Client) ToggleAutoMode(ctx context.Context, opts ...grpc.CallOption) (model.MoistureSnapshot, error) {
	return c.call(ctx, "ToggleAutoMode", &emptypb.Empty{}, opts...)
}

func (c *Client) SetThreshold(ctx context.Context, threshold float64, opts ...grpc.CallOption) (model.MoistureSnapshot, error) {
	return c.call(ctx, "SetThreshold", wrapperspb.Double(threshold), opts...)
}
