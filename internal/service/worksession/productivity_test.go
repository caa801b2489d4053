package worksession

import (
	"testing"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
	"github.com/stretchr/testify/assert"
)

func TestProductivityScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics worksession.ProductivityMetrics
		total   float64
		want    float64
	}{
		{
			name: "reference day",
			metrics: worksession.ProductivityMetrics{
				KeystrokeCount:  2000,
				ActiveTime:      200,
				WorkRelatedTime: 180,
				ViolationCount:  2,
			},
			total: 240,
			want:  81.08,
		},
		{
			name:    "zero total drops ratio terms",
			metrics: worksession.ProductivityMetrics{KeystrokeCount: 500, ActiveTime: 100, WorkRelatedTime: 100},
			total:   0,
			want:    15,
		},
		{
			name:    "violations capped at five points",
			metrics: worksession.ProductivityMetrics{KeystrokeCount: 1000, ViolationCount: 40},
			total:   60,
			want:    25,
		},
		{
			name:    "never below zero",
			metrics: worksession.ProductivityMetrics{ViolationCount: 10},
			total:   60,
			want:    0,
		},
		{
			name: "never above hundred",
			metrics: worksession.ProductivityMetrics{
				KeystrokeCount:  100000,
				ActiveTime:      600,
				WorkRelatedTime: 600,
			},
			total: 60,
			want:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := round2(ProductivityScore(tt.metrics, tt.total))
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
