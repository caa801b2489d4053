package worksession

import (
	"context"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/geo"
)

// LocationProvider supplies an already-resolved location. A nil point means the
// location could not be acquired.
type LocationProvider interface {
	Location(ctx context.Context) (*geo.Point, error)
}

// DeviceSignalProvider supplies activity metrics collected on the device.
type DeviceSignalProvider interface {
	Signals(ctx context.Context) (ProductivityMetrics, error)
}

// ResolveLocation asks p for a location, giving up after timeout. Timeouts and
// provider failures both yield a nil point: a missing location is valid input
// and the start/end rules decide what it means.
func ResolveLocation(ctx context.Context, p LocationProvider, timeout time.Duration) *geo.Point {
	if p == nil {
		return nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		point *geo.Point
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		point, err := p.Location(ctx)
		ch <- result{point, err}
	}()

	select {
	case <-ctx.Done():
		return nil
	case r := <-ch:
		if r.err != nil || r.point == nil {
			return nil
		}
		return r.point
	}
}
