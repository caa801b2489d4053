package worksession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locationFunc func(ctx context.Context) (*geo.Point, error)

func (f locationFunc) Location(ctx context.Context) (*geo.Point, error) { return f(ctx) }

func TestResolveLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved", func(t *testing.T) {
		req := &StartDayRequest{Latitude: ptrTo(-6.2), Longitude: ptrTo(106.8), Accuracy: ptrTo(12.0)}
		p := ResolveLocation(ctx, req, time.Second)
		require.NotNil(t, p)
		assert.Equal(t, geo.Point{Latitude: -6.2, Longitude: 106.8, Accuracy: 12}, *p)
	})

	t.Run("absent", func(t *testing.T) {
		assert.Nil(t, ResolveLocation(ctx, &EndDayRequest{}, time.Second))
		assert.Nil(t, ResolveLocation(ctx, nil, time.Second))
	})

	t.Run("provider error is absence", func(t *testing.T) {
		p := locationFunc(func(ctx context.Context) (*geo.Point, error) {
			return nil, errors.New("permission denied")
		})
		assert.Nil(t, ResolveLocation(ctx, p, time.Second))
	})

	t.Run("timeout is absence", func(t *testing.T) {
		p := locationFunc(func(ctx context.Context) (*geo.Point, error) {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return &geo.Point{Latitude: 1, Longitude: 1}, nil
		})
		assert.Nil(t, ResolveLocation(ctx, p, 20*time.Millisecond))
	})
}

func TestStartDayRequest_Validate(t *testing.T) {
	valid := StartDayRequest{EmployeeID: "emp-1", WorkLocation: "Office", Latitude: ptrTo(-6.2), Longitude: ptrTo(106.8)}
	require.NoError(t, valid.Validate())

	tests := map[string]func(r *StartDayRequest){
		"unknown location":  func(r *StartDayRequest) { r.WorkLocation = "Moon" },
		"latitude only":     func(r *StartDayRequest) { r.Longitude = nil },
		"latitude range":    func(r *StartDayRequest) { r.Latitude = ptrTo(91.0) },
		"target too low":    func(r *StartDayRequest) { r.TargetHours = ptrTo(0.5) },
		"target too high":   func(r *StartDayRequest) { r.TargetHours = ptrTo(12.5) },
		"negative accuracy": func(r *StartDayRequest) { r.Accuracy = ptrTo(-1.0) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func ptrTo[T any](v T) *T { return &v }
