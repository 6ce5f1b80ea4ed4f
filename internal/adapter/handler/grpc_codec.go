package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// codecName is the content subtype clients select with grpc.CallContentSubtype.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

const marketplaceServiceName = "ecofinds.Marketplace"

type MarketplaceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	AddToCart(context.Context, *AddToCartRequest) (*CartResponse, error)
	Checkout(context.Context, *CheckoutRequest) (*CheckoutResponse, error)
	Browse(context.Context, *BrowseRequest) (*BrowseResponse, error)
}

// unary builds the method descriptor for one request/response pair.
func unary[Req any](method string, call func(MarketplaceServer, context.Context, *Req) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MarketplaceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + marketplaceServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(MarketplaceServer), ctx, req.(*Req))
			})
		},
	}
}

var marketplaceServiceDesc = grpc.ServiceDesc{
	ServiceName: marketplaceServiceName,
	HandlerType: (*MarketplaceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", func(s MarketplaceServer, ctx context.Context, in *LoginRequest) (interface{}, error) {
			return s.Login(ctx, in)
		}),
		unary("AddToCart", func(s MarketplaceServer, ctx context.Context, in *AddToCartRequest) (interface{}, error) {
			return s.AddToCart(ctx, in)
		}),
		unary("Checkout", func(s MarketplaceServer, ctx context.Context, in *CheckoutRequest) (interface{}, error) {
			return s.Checkout(ctx, in)
		}),
		unary("Browse", func(s MarketplaceServer, ctx context.Context, in *BrowseRequest) (interface{}, error) {
			return s.Browse(ctx, in)
		}),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterMarketplaceServer(s grpc.ServiceRegistrar, srv MarketplaceServer) {
	s.RegisterService(&marketplaceServiceDesc, srv)
}

// MarketplaceClient calls the service over the json codec.
type MarketplaceClient struct {
	cc grpc.ClientConnInterface
}

func NewMarketplaceClient(cc grpc.ClientConnInterface) *MarketplaceClient {
	return &MarketplaceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+marketplaceServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MarketplaceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *MarketplaceClient) AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, "AddToCart", in, opts)
}

func (c *MarketplaceClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutResponse, error) {
	return invoke[CheckoutResponse](ctx, c.cc, "Checkout", in, opts)
}

func (c *MarketplaceClient) Browse(ctx context.Context, in *BrowseRequest, opts ...grpc.CallOption) (*BrowseResponse, error) {
	return invoke[BrowseResponse](ctx, c.cc, "Browse", in, opts)
}
