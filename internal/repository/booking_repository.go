package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

const bookingFields = `
	id entity company currency requester status
	subtotal gstAmount total
	lines { id bookingId lineNumber category quantity unitPrice discountPercent gstRate }
	createdAt updatedAt
`

// BookingRepository handles booking header + line item operations.
type BookingRepository struct {
	wh *warehouse.Client
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(wh *warehouse.Client) *BookingRepository {
	return &BookingRepository{wh: wh}
}

// Create inserts a booking with its lines in one mutation.
func (r *BookingRepository) Create(ctx context.Context, booking *BookingRecord) error {
	booking.ID = uuid.NewString()
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	for _, line := range booking.Lines {
		line.ID = uuid.NewString()
		line.BookingID = booking.ID
	}

	query := `
		mutation CreateBooking($input: BookingInput!) {
			createBooking(input: $input) { id createdAt }
		}
	`

	var resp struct {
		CreateBooking struct {
			ID string `json:"id"`
		} `json:"createBooking"`
	}

	return r.wh.Run(ctx, query, map[string]interface{}{"input": booking}, &resp)
}

// GetByID retrieves a booking with all lines.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*BookingRecord, error) {
	query := `
		query GetBooking($id: ID!) {
			getBooking(id: $id) {` + bookingFields + `}
		}
	`

	var resp struct {
		GetBooking *BookingRecord `json:"getBooking"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"id": id}, &resp); err != nil {
		return nil, err
	}
	if resp.GetBooking == nil {
		return nil, errors.NotFound("booking", id)
	}
	return resp.GetBooking, nil
}

// List retrieves all bookings for a requester.
func (r *BookingRepository) List(ctx context.Context, requester string) ([]*BookingRecord, error) {
	query := `
		query ListBookings($requester: String!) {
			listBookings(requester: $requester) {
				items {` + bookingFields + `}
			}
		}
	`

	var resp struct {
		ListBookings struct {
			Items []*BookingRecord `json:"items"`
		} `json:"listBookings"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"requester": requester}, &resp); err != nil {
		return nil, err
	}
	return resp.ListBookings.Items, nil
}
