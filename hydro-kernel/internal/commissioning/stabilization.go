package commissioning

import (
	"context"
	"time"
)

// DefaultStabilizationPeriod 负荷变化后记录基线前的稳定等待时间
const DefaultStabilizationPeriod = 2 * time.Minute

// WaitForStabilization 等待机组在新负荷下稳定，ctx 取消时提前返回
func WaitForStabilization(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
