package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
)

type fakeBookingStore struct {
	bookings []*repository.BookingRecord
}

func (f *fakeBookingStore) Create(_ context.Context, booking *repository.BookingRecord) error {
	booking.ID = "booking-id"
	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*repository.BookingRecord, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, errors.NotFound("booking", id)
}

func (f *fakeBookingStore) List(_ context.Context, requester string) ([]*repository.BookingRecord, error) {
	out := make([]*repository.BookingRecord, 0, len(f.bookings))
	for _, b := range f.bookings {
		if b.Requester == requester {
			out = append(out, b)
		}
	}
	return out, nil
}

func validBookingRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		Entity:    "AU",
		Company:   "Aperia Group",
		Currency:  "AUD",
		Requester: "requester@example.com",
		Lines: []*BookingLineRequest{
			{Category: "Freight", Quantity: 2, UnitPrice: 10_000, GSTRate: 10},
			{Category: "Handling", Quantity: 1, UnitPrice: 5_000, DiscountPercent: 10, GSTRate: 10},
		},
	}
}

func TestCreateBookingComputesTotals(t *testing.T) {
	store := &fakeBookingStore{}
	svc := NewBookingService(store, testLogger())

	booking, err := svc.CreateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)

	// Line 1: 2 * 100.00 = 200.00; line 2: 50.00 less 10% = 45.00.
	assert.Equal(t, int64(24_500), booking.Subtotal)
	assert.Equal(t, int64(2_450), booking.GSTAmount)
	assert.Equal(t, int64(26_950), booking.Total)
	assert.Equal(t, "open", booking.Status)

	require.Len(t, booking.Lines, 2)
	assert.Equal(t, 1, booking.Lines[0].LineNumber)
	assert.Equal(t, 2, booking.Lines[1].LineNumber)
	require.Len(t, store.bookings, 1)
}

func TestCreateBookingValidation(t *testing.T) {
	svc := NewBookingService(&fakeBookingStore{}, testLogger())

	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
	}{
		{name: "entity required", mutate: func(r *CreateBookingRequest) { r.Entity = "" }},
		{name: "currency must be 3 letters", mutate: func(r *CreateBookingRequest) { r.Currency = "AUDX" }},
		{name: "at least one line", mutate: func(r *CreateBookingRequest) { r.Lines = nil }},
		{name: "quantity positive", mutate: func(r *CreateBookingRequest) { r.Lines[0].Quantity = 0 }},
		{name: "unit price non-negative", mutate: func(r *CreateBookingRequest) { r.Lines[0].UnitPrice = -1 }},
		{name: "discount bounded", mutate: func(r *CreateBookingRequest) { r.Lines[0].DiscountPercent = 101 }},
		{name: "gst rate bounded", mutate: func(r *CreateBookingRequest) { r.Lines[0].GSTRate = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBookingRequest()
			tt.mutate(req)

			_, err := svc.CreateBooking(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
		})
	}
}

func TestTotalsRoundsPerLine(t *testing.T) {
	// 3 * 0.33 with 10% GST: line amount 99 cents, GST rounds 9.9 up to 10.
	subtotal, gst := Totals([]*repository.BookingLineItem{
		{Quantity: 3, UnitPrice: 33, GSTRate: 10},
	})
	assert.Equal(t, int64(99), subtotal)
	assert.Equal(t, int64(10), gst)
}

func TestTotalsEmpty(t *testing.T) {
	subtotal, gst := Totals(nil)
	assert.Zero(t, subtotal)
	assert.Zero(t, gst)
}

func TestListBookingsFiltersByRequester(t *testing.T) {
	store := &fakeBookingStore{bookings: []*repository.BookingRecord{
		{ID: "b-1", Requester: "a@example.com"},
		{ID: "b-2", Requester: "b@example.com"},
	}}
	svc := NewBookingService(store, testLogger())

	bookings, err := svc.ListBookings(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b-1", bookings[0].ID)
}
