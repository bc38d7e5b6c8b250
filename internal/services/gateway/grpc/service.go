package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

const ServiceName = "farmassist.irrigation.v1.IrrigationControl"

// IrrigationControlServer drives the soil-moisture simulator. Messages are
// protobuf well-known types: requests are Empty or DoubleValue, replies a
// Struct holding the moisture snapshot.
type IrrigationControlServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	TogglePump(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ToggleAutoMode(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetThreshold(context.Context, *wrapperspb.DoubleValue) (*structpb.Struct, error)
}

var IrrigationControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IrrigationControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: unary("GetState", IrrigationControlServer.GetState)},
		{MethodName: "TogglePump", Handler: unary("TogglePump", IrrigationControlServer.TogglePump)},
		{MethodName: "ToggleAutoMode", Handler: unary("ToggleAutoMode", IrrigationControlServer.ToggleAutoMode)},
		{MethodName: "SetThreshold", Handler: unary("SetThreshold", IrrigationControlServer.SetThreshold)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "farmassist/irrigation/v1/irrigation.proto",
}

func RegisterIrrigationControlServer(s grpc.ServiceRegistrar, srv IrrigationControlServer) {
	s.RegisterService(&IrrigationControlServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}](name string, call func(IrrigationControlServer, context.Context, PReq) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IrrigationControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(IrrigationControlServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Provider hands out the simulator of the soil-moisture page, mounting it if needed.
type Provider interface {
	AcquireSimulator() (*irrigation_simulator.Simulator, error)
}

// Service implements IrrigationControlServer on top of a Provider.
type Service struct {
	provider Provider
}

func NewService(p Provider) *Service {
	return &Service{provider: p}
}

func (s *Service) acquire() (*irrigation_simulator.Simulator, error) {
	sim, err := s.provider.AcquireSimulator()
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "soil-moisture page unavailable: %v", err)
	}
	return sim, nil
}

func (s *Service) GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	sim, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return encodeSnapshot(sim.Snapshot())
}

func (s *Service) TogglePump(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	sim, err := s.acquire()
	if err != nil {
		return nil, err
	}
	if err := sim.TogglePump(); err != nil {
		return nil, toStatus(err)
	}
	return encodeSnapshot(sim.Snapshot())
}

func (s *Service) ToggleAutoMode(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	sim, err := s.acquire()
	if err != nil {
		return nil, err
	}
	if err := sim.ToggleAutoMode(); err != nil {
		return nil, toStatus(err)
	}
	return encodeSnapshot(sim.Snapshot())
}

func (s *Service) SetThreshold(_ context.Context, req *wrapperspb.DoubleValue) (*structpb.Struct, error) {
	sim, err := s.acquire()
	if err != nil {
		return nil, err
	}
	if err := sim.SetThreshold(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return encodeSnapshot(sim.Snapshot())
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, irrigation_simulator.ErrThresholdRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, irrigation_simulator.ErrAutoMode), errors.Is(err, irrigation_simulator.ErrBusy):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, irrigation_simulator.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Errorf(codes.Internal, "command failed: %v", err)
	}
}

func encodeSnapshot(snap model.MoistureSnapshot) (*structpb.Struct, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return st, nil
}

func decodeSnapshot(st *structpb.Struct) (model.MoistureSnapshot, error) {
	var snap model.MoistureSnapshot
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
