package grpc

// service.go declares the FinancingService surface by hand. Messages are the
// application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "autochek.financing.v1.FinancingService"

// FullMethod returns the "/service/method" path used by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Empty is a request or response without fields.
type Empty struct{}

// ApplicationList wraps a list of applications.
type ApplicationList struct {
	Applications []dto.LoanApplicationResponse `json:"applications"`
}

// OfferList wraps a list of offers.
type OfferList struct {
	Offers []dto.OfferResponse `json:"offers"`
}

// ValuationList wraps a vehicle's valuation history.
type ValuationList struct {
	Valuations []dto.ValuationResponse `json:"valuations"`
}

// NotificationList wraps the caller's inbox.
type NotificationList struct {
	Notifications []dto.NotificationResponse `json:"notifications"`
}

// FinancingServiceServer is the server API for FinancingService.
type FinancingServiceServer interface {
	CheckEligibility(context.Context, *dto.CheckEligibilityRequest) (*dto.EligibilityResponse, error)
	SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.LoanApplicationResponse, error)
	GetApplication(context.Context, *dto.ApplicationRef) (*dto.LoanApplicationResponse, error)
	ListApplications(context.Context, *dto.ListApplicationsRequest) (*ApplicationList, error)
	ListUnclaimedApplications(context.Context, *Empty) (*ApplicationList, error)
	ClaimApplication(context.Context, *dto.ApplicationRef) (*dto.LoanApplicationResponse, error)
	UpdateApplicationStatus(context.Context, *dto.UpdateApplicationStatusRequest) (*dto.LoanApplicationResponse, error)
	DeleteApplication(context.Context, *dto.ApplicationRef) (*dto.DeleteResponse, error)
	CreateOffer(context.Context, *dto.CreateOfferRequest) (*dto.OfferResponse, error)
	GetOffer(context.Context, *dto.OfferRef) (*dto.OfferResponse, error)
	GetOfferSchedule(context.Context, *dto.OfferRef) (*dto.OfferScheduleResponse, error)
	ListMyOffers(context.Context, *Empty) (*OfferList, error)
	ListApplicationOffers(context.Context, *dto.ApplicationRef) (*OfferList, error)
	AcceptOffer(context.Context, *dto.OfferRef) (*dto.OfferResponse, error)
	DeclineOffer(context.Context, *dto.DeclineOfferRequest) (*dto.OfferResponse, error)
	UpdateOfferStatus(context.Context, *dto.UpdateOfferStatusRequest) (*dto.OfferResponse, error)
	RequestValuation(context.Context, *dto.RequestValuationRequest) (*dto.ValuationResponse, error)
	ListValuationHistory(context.Context, *dto.ValuationHistoryRequest) (*ValuationList, error)
	EvaluateVehicle(context.Context, *dto.EvaluateVehicleRequest) (*dto.VehicleEvaluationResponse, error)
	UpdateVehiclePricing(context.Context, *dto.UpdateVehiclePricingRequest) (*dto.VehicleResponse, error)
	ListNotifications(context.Context, *Empty) (*NotificationList, error)
	MarkNotificationRead(context.Context, *dto.NotificationRef) (*dto.NotificationResponse, error)
	MarkNotificationsRead(context.Context, *dto.MarkNotificationsReadRequest) (*dto.MarkNotificationsReadResponse, error)
}

// RegisterFinancingServiceServer registers srv with the gRPC server.
func RegisterFinancingServiceServer(s grpclib.ServiceRegistrar, srv FinancingServiceServer) {
	s.RegisterService(&financingServiceDesc, srv)
}

var financingServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FinancingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unaryMethod("CheckEligibility", FinancingServiceServer.CheckEligibility),
		unaryMethod("SubmitApplication", FinancingServiceServer.SubmitApplication),
		unaryMethod("GetApplication", FinancingServiceServer.GetApplication),
		unaryMethod("ListApplications", FinancingServiceServer.ListApplications),
		unaryMethod("ListUnclaimedApplications", FinancingServiceServer.ListUnclaimedApplications),
		unaryMethod("ClaimApplication", FinancingServiceServer.ClaimApplication),
		unaryMethod("UpdateApplicationStatus", FinancingServiceServer.UpdateApplicationStatus),
		unaryMethod("DeleteApplication", FinancingServiceServer.DeleteApplication),
		unaryMethod("CreateOffer", FinancingServiceServer.CreateOffer),
		unaryMethod("GetOffer", FinancingServiceServer.GetOffer),
		unaryMethod("GetOfferSchedule", FinancingServiceServer.GetOfferSchedule),
		unaryMethod("ListMyOffers", FinancingServiceServer.ListMyOffers),
		unaryMethod("ListApplicationOffers", FinancingServiceServer.ListApplicationOffers),
		unaryMethod("AcceptOffer", FinancingServiceServer.AcceptOffer),
		unaryMethod("DeclineOffer", FinancingServiceServer.DeclineOffer),
		unaryMethod("UpdateOfferStatus", FinancingServiceServer.UpdateOfferStatus),
		unaryMethod("RequestValuation", FinancingServiceServer.RequestValuation),
		unaryMethod("ListValuationHistory", FinancingServiceServer.ListValuationHistory),
		unaryMethod("EvaluateVehicle", FinancingServiceServer.EvaluateVehicle),
		unaryMethod("UpdateVehiclePricing", FinancingServiceServer.UpdateVehiclePricing),
		unaryMethod("ListNotifications", FinancingServiceServer.ListNotifications),
		unaryMethod("MarkNotificationRead", FinancingServiceServer.MarkNotificationRead),
		unaryMethod("MarkNotificationsRead", FinancingServiceServer.MarkNotificationsRead),
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryMethod builds the MethodDesc for one RPC the way protoc-gen-go-grpc
// generates it per method.
func unaryMethod[Req, Resp any](
	name string,
	call func(FinancingServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	fullMethod := FullMethod(name)
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decode %s request: %v", name, err)
			}
			if interceptor == nil {
				return call(srv.(FinancingServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FinancingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
