package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/data/entity"
	"github.com/marczlle/letterboxd-v2/internal/data/repository"
	"github.com/marczlle/letterboxd-v2/internal/dto/request"
	"github.com/marczlle/letterboxd-v2/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReservationRepo struct {
	mu      sync.Mutex
	batches [][]*entity.Reservation
	err     error
}

func (f *fakeReservationRepo) CreateBatch(_ context.Context, reservations []*entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, reservations)
	return nil
}

func (f *fakeReservationRepo) all() []*entity.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Reservation
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func testService(repo *fakeReservationRepo) ReservationService {
	hub := NewHub(entity.DefaultLayout(), time.Minute, time.Hour, zap.NewNop())
	return NewReservationService(hub, &repository.Repository{Reservation: repo}, zap.NewNop())
}

func validPayer() request.Payer {
	return request.Payer{
		Name:     "Maria Souza",
		Document: "123.456.789-00",
		Contact:  "maria@example.com",
	}
}

func TestJoinCreatesSessionLazily(t *testing.T) {
	svc := testService(&fakeReservationRepo{})

	snap, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)
	assert.Equal(t, "S001", snap.Session)
	assert.Equal(t, "USR-AAA111", snap.ClientID)
	assert.Equal(t, 60, snap.HoldTTLSeconds)
	assert.Len(t, snap.Seats, 200)
}

func TestJoinRejectsEmptySession(t *testing.T) {
	svc := testService(&fakeReservationRepo{})

	_, err := svc.Join("", newFakeSub("USR-AAA111"))
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestLockSeatUnknownSession(t *testing.T) {
	svc := testService(&fakeReservationRepo{})

	err := svc.LockSeat(context.Background(), "NOPE", "A01", "USR-AAA111")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestConfirmPaymentFullFlow(t *testing.T) {
	repo := &fakeReservationRepo{}
	svc := testService(repo)

	_, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)
	require.NoError(t, svc.LockSeat(context.Background(), "S001", "A01", "USR-AAA111"))

	result, err := svc.ConfirmPayment(context.Background(), &request.ConfirmPaymentRequest{
		Session:  "S001",
		Seats:    []string{"A01"},
		ClientID: "USR-AAA111",
		Payer:    validPayer(),
	})
	require.NoError(t, err)

	assert.Equal(t, response.TypeConfirmationPayment, result.Type)
	assert.Equal(t, response.StatusOK, result.Status)
	assert.Equal(t, []string{"A01"}, result.ConfirmedSeats)
	assert.Empty(t, result.FailedSeats)

	archived := repo.all()
	require.Len(t, archived, 1)
	assert.True(t, strings.HasPrefix(archived[0].Code, "RESV-"))
	assert.Equal(t, "S001", archived[0].SessionID)
	assert.Equal(t, "A01", archived[0].SeatID)
	assert.Equal(t, "Maria Souza", archived[0].PayerName)
}

func TestConfirmPaymentPartial(t *testing.T) {
	repo := &fakeReservationRepo{}
	svc := testService(repo)

	_, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)
	require.NoError(t, svc.LockSeat(context.Background(), "S001", "A01", "USR-AAA111"))
	require.NoError(t, svc.LockSeat(context.Background(), "S001", "A02", "USR-BBB222"))

	result, err := svc.ConfirmPayment(context.Background(), &request.ConfirmPaymentRequest{
		Session:  "S001",
		Seats:    []string{"A01", "A02"},
		ClientID: "USR-AAA111",
		Payer:    validPayer(),
	})
	require.NoError(t, err)

	assert.Equal(t, response.StatusPartial, result.Status)
	assert.Equal(t, []string{"A01"}, result.ConfirmedSeats)
	assert.Equal(t, []string{"A02"}, result.FailedSeats)

	// only confirmed seats are archived
	archived := repo.all()
	require.Len(t, archived, 1)
	assert.Equal(t, "A01", archived[0].SeatID)
}

func TestConfirmPaymentAllStolen(t *testing.T) {
	repo := &fakeReservationRepo{}
	svc := testService(repo)

	_, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)
	require.NoError(t, svc.LockSeat(context.Background(), "S001", "A02", "USR-BBB222"))

	result, err := svc.ConfirmPayment(context.Background(), &request.ConfirmPaymentRequest{
		Session:  "S001",
		Seats:    []string{"A02"},
		ClientID: "USR-AAA111",
		Payer:    validPayer(),
	})
	require.NoError(t, err)

	assert.Equal(t, response.StatusError, result.Status)
	assert.Empty(t, result.ConfirmedSeats)
	assert.Equal(t, []string{"A02"}, result.FailedSeats)
	assert.Empty(t, repo.all())
}

func TestConfirmPaymentMissingPayer(t *testing.T) {
	svc := testService(&fakeReservationRepo{})

	_, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), &request.ConfirmPaymentRequest{
		Session:  "S001",
		Seats:    []string{"A01"},
		ClientID: "USR-AAA111",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestConfirmPaymentSurvivesArchiveFailure(t *testing.T) {
	repo := &fakeReservationRepo{err: errors.New("archive down")}
	svc := testService(repo)

	_, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)
	require.NoError(t, svc.LockSeat(context.Background(), "S001", "A01", "USR-AAA111"))

	result, err := svc.ConfirmPayment(context.Background(), &request.ConfirmPaymentRequest{
		Session:  "S001",
		Seats:    []string{"A01"},
		ClientID: "USR-AAA111",
		Payer:    validPayer(),
	})
	require.NoError(t, err)

	// the sale is committed in memory even when archiving fails
	assert.Equal(t, response.StatusOK, result.Status)
}

func TestLeaveReleasesThroughService(t *testing.T) {
	svc := testService(&fakeReservationRepo{})

	watcher := newFakeSub("USR-BBB222")
	_, err := svc.Join("S001", newFakeSub("USR-AAA111"))
	require.NoError(t, err)
	_, err = svc.Join("S001", watcher)
	require.NoError(t, err)

	require.NoError(t, svc.LockSeat(context.Background(), "S001", "C05", "USR-AAA111"))

	svc.Leave("S001", "USR-AAA111")

	released := watcher.events(response.EventSeatReleased)
	require.Len(t, released, 1)
	assert.Equal(t, "C05", released[0].Seat)
	assert.Equal(t, response.ReasonDisconnect, released[0].Reason)

	// leaving an unknown session is a no-op
	svc.Leave("NOPE", "USR-AAA111")
}
