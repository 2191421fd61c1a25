package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/roms/pkg"
	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
)

// Watch prints live change signals from NATS until ctx is cancelled.
func Watch(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	sub, err := pkg.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		return fmt.Errorf("connect subscriber: %w", err)
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, event.ChangesTopic, func(ctx context.Context, msg []byte) error {
		var signal event.Signal
		if err := json.Unmarshal(msg, &signal); err != nil {
			return fmt.Errorf("decode signal: %w", err)
		}
		fmt.Printf("%s\t%s\t%s\n", signal.OccurredAt.Format("15:04:05"), signal.Name, signal.OrderID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", event.ChangesTopic, err)
	}

	logger.Info("Watching change signals", "topic", event.ChangesTopic)
	<-ctx.Done()
	return nil
}
