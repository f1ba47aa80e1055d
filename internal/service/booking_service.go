package service

import (
	"context"
	"math"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/logger"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
)

// BookingStore is the booking persistence surface.
type BookingStore interface {
	Create(ctx context.Context, booking *repository.BookingRecord) error
	GetByID(ctx context.Context, id string) (*repository.BookingRecord, error)
	List(ctx context.Context, requester string) ([]*repository.BookingRecord, error)
}

// BookingService handles the booking/invoicing sub-flow. Bookings carry no
// approval semantics; the service computes invoice-style totals.
type BookingService struct {
	bookings BookingStore
	log      *logger.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(bookings BookingStore, log *logger.Logger) *BookingService {
	return &BookingService{bookings: bookings, log: log}
}

// CreateBookingRequest represents a create booking request.
type CreateBookingRequest struct {
	Entity    string                `json:"entity"`
	Company   string                `json:"company"`
	Currency  string                `json:"currency"`
	Requester string                `json:"-"`
	Lines     []*BookingLineRequest `json:"lines"`
}

// BookingLineRequest represents one booking line.
type BookingLineRequest struct {
	Category        string  `json:"category"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       int64   `json:"unitPrice"` // cents
	DiscountPercent float64 `json:"discountPercent"`
	GSTRate         float64 `json:"gstRate"` // percent
}

// CreateBooking validates the request, computes subtotal/GST/total and stores
// the booking with its lines.
func (s *BookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*repository.BookingRecord, error) {
	if req.Entity == "" {
		return nil, errors.InvalidInput("entity", "entity is required")
	}
	if len(req.Currency) != 3 {
		return nil, errors.InvalidInput("currency", "currency must be 3-letter ISO code")
	}
	if len(req.Lines) < 1 {
		return nil, errors.InvalidInput("lines", "booking must have at least 1 line")
	}

	booking := &repository.BookingRecord{
		Entity:    req.Entity,
		Company:   req.Company,
		Currency:  req.Currency,
		Requester: req.Requester,
		Status:    "open",
		Lines:     make([]*repository.BookingLineItem, 0, len(req.Lines)),
	}

	for i, lineReq := range req.Lines {
		if lineReq.Quantity <= 0 {
			return nil, errors.InvalidInput("quantity", "quantity must be positive")
		}
		if lineReq.UnitPrice < 0 {
			return nil, errors.InvalidInput("unitPrice", "unit price cannot be negative")
		}
		if lineReq.DiscountPercent < 0 || lineReq.DiscountPercent > 100 {
			return nil, errors.InvalidInput("discountPercent", "discount must be between 0 and 100")
		}
		if lineReq.GSTRate < 0 || lineReq.GSTRate > 100 {
			return nil, errors.InvalidInput("gstRate", "GST rate must be between 0 and 100")
		}

		booking.Lines = append(booking.Lines, &repository.BookingLineItem{
			LineNumber:      i + 1,
			Category:        lineReq.Category,
			Quantity:        lineReq.Quantity,
			UnitPrice:       lineReq.UnitPrice,
			DiscountPercent: lineReq.DiscountPercent,
			GSTRate:         lineReq.GSTRate,
		})
	}

	booking.Subtotal, booking.GSTAmount = Totals(booking.Lines)
	booking.Total = booking.Subtotal + booking.GSTAmount

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("booking_id", booking.ID).
		Str("entity", booking.Entity).
		Int64("total", booking.Total).
		Int("line_count", len(booking.Lines)).
		Msg("Booking created")

	return booking, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*repository.BookingRecord, error) {
	return s.bookings.GetByID(ctx, id)
}

// ListBookings lists a requester's bookings.
func (s *BookingService) ListBookings(ctx context.Context, requester string) ([]*repository.BookingRecord, error) {
	return s.bookings.List(ctx, requester)
}

// Totals computes the ex-GST subtotal and GST amount in cents over a booking's
// lines. Per-line amounts are rounded half away from zero before summing.
func Totals(lines []*repository.BookingLineItem) (subtotal, gst int64) {
	for _, line := range lines {
		amount := line.Quantity * float64(line.UnitPrice)
		amount -= amount * line.DiscountPercent / 100

		lineAmount := int64(math.Round(amount))
		lineGST := int64(math.Round(amount * line.GSTRate / 100))

		subtotal += lineAmount
		gst += lineGST
	}
	return subtotal, gst
}
