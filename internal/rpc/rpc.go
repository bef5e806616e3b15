// Package rpc exposes the calculator over gRPC. Messages are google.protobuf.Struct
// documents carrying the same JSON shapes the HTTP endpoints accept.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/dmgcalc/internal/build"
	"github.com/xtding233/dmgcalc/internal/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dmgcalc.v1.Calculator"

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Optimize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProfiles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Calculator service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler("Evaluate", CalculatorServer.Evaluate)},
		{MethodName: "Optimize", Handler: unaryHandler("Optimize", CalculatorServer.Optimize)},
		{MethodName: "Convert", Handler: unaryHandler("Convert", CalculatorServer.Convert)},
		{MethodName: "ListProfiles", Handler: unaryHandler("ListProfiles", CalculatorServer.ListProfiles)},
		{MethodName: "Simulate", Handler: unaryHandler("Simulate", CalculatorServer.Simulate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dmgcalc/v1/calculator.proto",
}

func unaryHandler(method string, call func(CalculatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CalculatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server adapts service.Service to CalculatorServer.
type Server struct {
	svc *service.Service
}

var _ CalculatorServer = (*Server)(nil)

// NewServer wraps svc.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	body, err := requestJSON(in)
	if err != nil {
		return nil, err
	}
	resp, err := s.svc.Evaluate(ctx, body)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(resp)
}

func (s *Server) Optimize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	body, err := requestJSON(in)
	if err != nil {
		return nil, err
	}
	plan, err := s.svc.Optimize(ctx, body)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(plan)
}

func (s *Server) Convert(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	body, err := requestJSON(in)
	if err != nil {
		return nil, err
	}
	resp, err := s.svc.Convert(body)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(resp)
}

func (s *Server) ListProfiles(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	profiles, err := s.svc.Profiles()
	if err != nil {
		return nil, toStatus(err)
	}
	if profiles == nil {
		profiles = []build.Profile{}
	}
	return toStruct(map[string]any{"profiles": profiles})
}

func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	body, err := requestJSON(in)
	if err != nil {
		return nil, err
	}
	resp, err := s.svc.Simulate(ctx, body)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(resp)
}

func requestJSON(in *structpb.Struct) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	return b, nil
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, build.ErrProfileNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, build.ErrInvalidProfile), errors.Is(err, service.ErrBadRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Errorf(codes.Internal, "%v", err)
}

// Client calls a remote Calculator service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req (any JSON-encodable value, nil for {}) and
// decodes the response document into out.
func (c *Client) Call(ctx context.Context, method string, req, out any) error {
	in := new(structpb.Struct)
	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", method, err)
		}
		if err := protojson.Unmarshal(b, in); err != nil {
			return fmt.Errorf("encode %s request: %w", method, err)
		}
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	b, err := protojson.Marshal(resp)
	if err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
